package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
)

var articlePage = `<!doctype html><html><head>
<title>Budget Freeze Announced</title>
<meta name="description" content="Finance pauses new spending until Q3.">
<style>.x{color:red}</style>
</head><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<header>Site header</header>
<article>
<h1>Budget Freeze Announced</h1>
<p>` + strings.Repeat("The finance team announced a quarterly budget freeze that affects every department. ", 6) + `</p>
<p>` + strings.Repeat("Managers must submit revised plans by Friday so that approvals can continue without delay. ", 6) + `</p>
</article>
<script>trackPageView()</script>
<footer>Copyright</footer>
</body></html>`

func TestArticle_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	x := NewArticleExtractor(NewFetcher(srv.Client(), 0), 5*time.Second, 0, nil)
	a, err := x.Extract(context.Background(), srv.URL+"/news/freeze")
	require.NoError(t, err)

	assert.Equal(t, "Budget Freeze Announced", a.Title)
	assert.Equal(t, "Finance pauses new spending until Q3.", a.Description)
	assert.Contains(t, a.Text, "quarterly budget freeze")
	assert.NotContains(t, a.Text, "trackPageView")
	assert.NotContains(t, a.Text, "color:red")

	formatted := a.Format(srv.URL + "/news/freeze")
	assert.True(t, strings.HasPrefix(formatted, "Title: Budget Freeze Announced\n"))
	assert.Contains(t, formatted, "URL: "+srv.URL)
}

func TestArticle_Non2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	x := NewArticleExtractor(NewFetcher(srv.Client(), 0), time.Second, 0, nil)
	_, err := x.Extract(context.Background(), srv.URL+"/missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFetch))
	assert.Contains(t, err.Error(), "404")
}

func TestArticle_TimeoutIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	x := NewArticleExtractor(NewFetcher(srv.Client(), 0), 50*time.Millisecond, 0, nil)
	_, err := x.Extract(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, errors.ErrFetch))
}

func TestArticle_Truncates(t *testing.T) {
	x := NewArticleExtractor(nil, 0, 100, nil)
	a, err := x.ExtractHTML(articlePage, nil)
	require.NoError(t, err)

	assert.Equal(t, 100+len(capsule.TruncationMarker), capsule.CountChars(a.Text))
	assert.True(t, strings.HasSuffix(a.Text, capsule.TruncationMarker))
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<div><p>Fish &amp; chips</p>
		<p>on   <b>Friday</b></p></div>`)
	assert.Equal(t, "Fish & chips on Friday", got)
}

func TestPDFText_RejectsGarbage(t *testing.T) {
	_, err := PDFText(nil)
	assert.Error(t, err)

	_, err = PDFText([]byte("%PDF-1.4 not really a pdf"))
	assert.Error(t, err)
}
