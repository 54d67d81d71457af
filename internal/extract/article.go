package extract

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
)

// DefaultMaxArticleChars bounds article text handed to the model.
const DefaultMaxArticleChars = 10000

// noiseSelector lists elements removed before main-content detection.
const noiseSelector = "script, style, noscript, nav, header, footer, aside, iframe, form, svg"

// Article is readable text pulled from a web page.
type Article struct {
	Title       string
	Description string
	Text        string

	// Method is "readability" or "strip".
	Method string
}

// Format renders the article as a single prompt-ready block.
func (a *Article) Format(pageURL string) string {
	var b strings.Builder
	if a.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", a.Title)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", a.Description)
	}
	if pageURL != "" {
		fmt.Fprintf(&b, "URL: %s\n", pageURL)
	}
	b.WriteString("\n")
	b.WriteString(a.Text)
	return b.String()
}

// ArticleExtractor fetches a page and reduces it to readable text.
type ArticleExtractor struct {
	fetcher  *Fetcher
	timeout  time.Duration
	maxChars int
	log      *logging.Logger
}

// NewArticleExtractor builds an extractor. maxChars <= 0 uses
// DefaultMaxArticleChars.
func NewArticleExtractor(fetcher *Fetcher, timeout time.Duration, maxChars int, log *logging.Logger) *ArticleExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxArticleChars
	}
	return &ArticleExtractor{fetcher: fetcher, timeout: timeout, maxChars: maxChars, log: orNop(log)}
}

// Extract fetches rawURL with a browser profile and extracts its text.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.fetcher.Get(ctx, rawURL, ProfileBrowser, nil)
	e.log.ExternalFetch("article", "http_get", rawURL, err)
	if err != nil {
		return nil, errors.NewFetch(fmt.Sprintf("could not fetch %s: %v", rawURL, err), err)
	}

	pageURL, _ := url.Parse(resp.FinalURL)
	return e.ExtractHTML(string(resp.Body), pageURL)
}

// ExtractHTML reduces raw HTML to an Article. It prefers readability and
// falls back to stripping every tag when that yields nothing.
func (e *ArticleExtractor) ExtractHTML(rawHTML string, pageURL *url.URL) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, errors.NewFetch("could not parse page HTML", err)
	}

	a := &Article{
		Title:       pageTitle(doc),
		Description: metaContent(doc, "meta[name='description']", "meta[property='og:description']"),
	}

	doc.Find(noiseSelector).Remove()
	cleaned, err := doc.Html()
	if err != nil {
		cleaned = rawHTML
	}

	parsed, err := readability.FromReader(strings.NewReader(cleaned), pageURL)
	if err == nil {
		a.Text = capsule.CollapseWhitespace(parsed.TextContent)
		if a.Title == "" {
			a.Title = strings.TrimSpace(parsed.Title)
		}
		a.Method = "readability"
	}
	if a.Text == "" {
		a.Text = StripTags(cleaned)
		a.Method = "strip"
	}

	a.Text = capsule.Truncate(a.Text, e.maxChars)
	return a, nil
}

// StripTags removes every tag and collapses whitespace.
func StripTags(rawHTML string) string {
	text := bluemonday.StrictPolicy().Sanitize(rawHTML)
	return capsule.CollapseWhitespace(html.UnescapeString(text))
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return capsule.CollapseWhitespace(title)
	}
	if title := metaContent(doc, "meta[property='og:title']", "meta[name='title']"); title != "" {
		return title
	}
	return capsule.CollapseWhitespace(doc.Find("h1").First().Text())
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
