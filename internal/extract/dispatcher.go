package extract

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/source"
)

// Dispatcher routes a classified reference to its extractor.
type Dispatcher struct {
	Article *ArticleExtractor
	PDF     *PDFExtractor
	YouTube *YouTubeExtractor
	Twitter *TwitterExtractor
	Media   *MediaExtractor

	// MaxTextChars bounds plain-text documents.
	MaxTextChars int

	Log *logging.Logger
}

// NewDispatcher wires every extractor from cfg. client may be nil.
func NewDispatcher(cfg *config.Config, client *http.Client, uploader Uploader, log *logging.Logger) *Dispatcher {
	log = orNop(log)
	fetcher := NewFetcher(client, cfg.MaxFileBytes)
	return &Dispatcher{
		Article: NewArticleExtractor(fetcher, cfg.FetchTimeout(), cfg.MaxArticleChars, log),
		PDF:     NewPDFExtractor(fetcher, cfg.FetchTimeout(), cfg.MaxArticleChars, log),
		YouTube: NewYouTubeExtractor(fetcher, YouTubeOptions{
			TranscriptAPIURL:   cfg.TranscriptAPIURL,
			TranscriptAPIToken: cfg.TranscriptAPIToken,
			Languages:          cfg.CaptionLanguages,
			Timeout:            cfg.FetchTimeout(),
		}, log),
		Twitter:      NewTwitterExtractor(fetcher, DefaultTwitterEndpoints, cfg.MirrorTimeout(), log),
		Media:        NewMediaExtractor(cfg.MaxFileBytes, cfg.InlineMediaMaxBytes, uploader, log),
		MaxTextChars: cfg.MaxTextChars,
		Log:          log,
	}
}

// Extract produces model-ready content for ref.
func (d *Dispatcher) Extract(ctx context.Context, ref source.Reference, cls source.Classification) (*Content, error) {
	content := &Content{SourceType: cls.SourceType, Provenance: ref.SourceLabel()}

	switch cls.Strategy {
	case source.StrategyPassThrough:
		content.Text = strings.TrimSpace(ref.Text)

	case source.StrategyDocument:
		text := strings.TrimSpace(strings.ToValidUTF8(string(ref.Data), ""))
		if text == "" {
			return nil, errors.NewInvalidInput("document has no text")
		}
		content.Text = capsule.Truncate(text, d.MaxTextChars)
		content.Title = ref.FileName

	case source.StrategyArticle:
		a, err := d.Article.Extract(ctx, ref.URL)
		if err != nil {
			return nil, err
		}
		if capsule.CountChars(a.Text) < MinTextChars {
			return nil, errors.NewFetch("insufficient content extracted from "+ref.URL, nil)
		}
		content.Text = a.Format(ref.URL)
		content.Title = a.Title
		content.Method = a.Method

	case source.StrategyPDF:
		doc, err := d.PDF.Extract(ctx, ref.URL)
		if err != nil {
			return nil, err
		}
		if doc.Text != "" {
			content.Text = doc.Text
			content.Method = "pdf-text"
		} else {
			media, err := d.Media.Package(ctx, doc.Data, "application/pdf", ref.URL)
			if err != nil {
				return nil, err
			}
			content.Media = media
			content.Method = "pdf-media"
		}

	case source.StrategyTranscript:
		t, err := d.YouTube.Transcript(ctx, cls.VideoID)
		if err != nil {
			return nil, err
		}
		if t.Available {
			content.Text = t.Format()
			content.Title = t.Title
			content.Method = t.Method
		} else {
			// No transcript: the model watches the video itself.
			content.Media = &MediaRef{URI: t.WatchURL()}
			content.Method = "multimodal"
		}

	case source.StrategyMirror:
		tweet, method, err := d.Twitter.Fetch(ctx, cls.TweetID)
		if err != nil {
			return nil, err
		}
		content.Text = tweet.Format()
		content.Title = "@" + tweet.Handle
		content.Method = method

	case source.StrategyMedia:
		media, err := d.Media.Package(ctx, ref.Data, ref.MIMEType, ref.FileName)
		if err != nil {
			return nil, err
		}
		content.Media = media
		content.Title = ref.FileName

	default:
		return nil, errors.NewInvalidInput("no extractor for strategy " + string(cls.Strategy))
	}

	if content.Empty() {
		return nil, errors.NewInvalidInput("content is empty")
	}
	if content.Text != "" && !utf8.ValidString(content.Text) {
		content.Text = strings.ToValidUTF8(content.Text, "")
	}
	d.orNopLog().Debug("content extracted",
		"source_type", string(content.SourceType),
		"method", content.Method,
		"text_chars", capsule.CountChars(content.Text),
		"media", content.Media != nil,
	)
	return content, nil
}

func (d *Dispatcher) orNopLog() *logging.Logger {
	return orNop(d.Log)
}
