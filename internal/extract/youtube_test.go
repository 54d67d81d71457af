package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchPage = `<html><head><title>Quarterly Review &amp; Plan - YouTube</title></head>
<body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"BASE/captions?lang=en&fmt=srv1","languageCode":"en"},
{"baseUrl":"BASE/captions?lang=es\u0026fmt=srv1","languageCode":"es"}],"audioTracks":[]}}};</script></body></html>`

const transcriptToken = "test-token"

type youtubeServer struct {
	api      http.HandlerFunc
	watch    http.HandlerFunc
	captions http.HandlerFunc
}

func newYouTubeExtractor(t *testing.T, s youtubeServer) *YouTubeExtractor {
	t.Helper()
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic "+transcriptToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if s.api == nil {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		s.api(w, r)
	})
	mux.HandleFunc("GET /watch", func(w http.ResponseWriter, r *http.Request) {
		if s.watch == nil {
			_, _ = w.Write([]byte("<html><title>x - YouTube</title></html>"))
			return
		}
		s.watch(&rewriter{ResponseWriter: w, base: base}, r)
	})
	mux.HandleFunc("GET /captions", func(w http.ResponseWriter, r *http.Request) {
		if s.captions == nil {
			http.NotFound(w, r)
			return
		}
		s.captions(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	base = srv.URL

	return NewYouTubeExtractor(NewFetcher(srv.Client(), 0), YouTubeOptions{
		TranscriptAPIURL:   srv.URL + "/api",
		TranscriptAPIToken: transcriptToken,
		WatchURL:           srv.URL + "/watch",
		Languages:          []string{"es"},
	}, nil)
}

// rewriter substitutes the test server URL for BASE in page bodies.
type rewriter struct {
	http.ResponseWriter
	base string
}

func (w *rewriter) Write(p []byte) (int, error) {
	_, err := w.ResponseWriter.Write([]byte(strings.ReplaceAll(string(p), "BASE", w.base)))
	return len(p), err
}

func TestYouTube_TranscriptAPI(t *testing.T) {
	x := newYouTubeExtractor(t, youtubeServer{
		api: func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				IDs []string `json:"ids"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.IDs) != 1 || body.IDs[0] != "dQw4w9WgXcQ" {
				http.Error(w, "bad ids", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`[{"id":"dQw4w9WgXcQ","title":"Demo","tracks":[
				{"language":"en","transcript":[{"text":"hello"}]},
				{"language":"es","transcript":[{"text":"hola"},{"text":" equipo "}]}]}]`))
		},
	})

	got, err := x.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, "transcript-api", got.Method)
	assert.Equal(t, "Demo", got.Title)
	assert.Equal(t, "hola equipo", got.Text)
}

func TestYouTube_TranscriptAPISkippedWithoutToken(t *testing.T) {
	var apiCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			apiCalls.Add(1)
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	x := NewYouTubeExtractor(NewFetcher(srv.Client(), 0), YouTubeOptions{
		TranscriptAPIURL: srv.URL + "/api",
		WatchURL:         srv.URL + "/watch",
	}, nil)

	got, err := x.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Zero(t, apiCalls.Load())
	assert.NotContains(t, got.Failure, "transcript-api:")
	assert.Contains(t, got.Failure, "timedtext:")
}

func TestYouTube_FallsBackToCaptionTracks(t *testing.T) {
	var captionLang string
	x := newYouTubeExtractor(t, youtubeServer{
		watch: func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Accept-Language"), "es")
			_, _ = w.Write([]byte(watchPage))
		},
		captions: func(w http.ResponseWriter, r *http.Request) {
			captionLang = r.URL.Query().Get("lang")
			assert.Equal(t, "srv1", r.URL.Query().Get("fmt"))
			_, _ = w.Write([]byte(`<?xml version="1.0"?><transcript>` +
				`<text start="0" dur="1">Hola &amp;#39;equipo&amp;#39;</text>` +
				`<text start="1" dur="1">presupuesto
listo</text></transcript>`))
		},
	})

	got, err := x.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, "timedtext", got.Method)
	assert.Equal(t, "es", captionLang)
	assert.Equal(t, "Quarterly Review & Plan", got.Title)
	assert.Equal(t, "Hola 'equipo' presupuesto listo", got.Text)
}

func TestYouTube_NoTranscriptIsNotAnError(t *testing.T) {
	x := newYouTubeExtractor(t, youtubeServer{})

	got, err := x.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Contains(t, got.Failure, "transcript-api:")
	assert.Contains(t, got.Failure, "timedtext:")
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", got.WatchURL())
}

func TestYouTube_CancelledContextIsAnError(t *testing.T) {
	x := newYouTubeExtractor(t, youtubeServer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Transcript(ctx, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPickLanguage(t *testing.T) {
	assert.Equal(t, 1, pickLanguage([]string{"en", "es-419"}, []string{"es"}))
	assert.Equal(t, 0, pickLanguage([]string{"en", "fr"}, []string{"es"}))
	assert.Equal(t, 0, pickLanguage([]string{"en"}, nil))
}
