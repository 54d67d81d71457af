package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/logging"
)

const (
	// DefaultWatchURL is the page scraped for caption tracks.
	DefaultWatchURL = "https://www.youtube.com/watch"

	// DefaultVideoTitle labels videos whose title could not be read.
	DefaultVideoTitle = "YouTube video"

	captionTracksMarker = `"captionTracks":`
)

var youtubeTitlePattern = regexp.MustCompile(`<title>(.+?) - YouTube</title>`)

// Transcript is the outcome of a transcript lookup. When Available is
// false the caller should let the model watch the video itself.
type Transcript struct {
	VideoID   string
	Title     string
	Text      string
	Method    string
	Available bool

	// Failure summarizes why every method failed when Available is false.
	Failure string
}

// Format renders an available transcript as a prompt-ready block.
func (t *Transcript) Format() string {
	return fmt.Sprintf("Video ID: %s\nTitle: %s\n\nTranscript:\n%s", t.VideoID, t.Title, t.Text)
}

// WatchURL is the canonical public URL of the video.
func (t *Transcript) WatchURL() string {
	return DefaultWatchURL + "?v=" + url.QueryEscape(t.VideoID)
}

// YouTubeExtractor retrieves video transcripts through an ordered chain:
// a transcript API first, then the captions embedded in the watch page.
type YouTubeExtractor struct {
	fetcher       *Fetcher
	transcriptAPI string
	apiToken      string
	watchURL      string
	languages     []string
	timeout       time.Duration
	log           *logging.Logger
}

// YouTubeOptions configures a YouTubeExtractor. Empty fields use defaults.
type YouTubeOptions struct {
	// TranscriptAPIURL receives POST {"ids":[id]}. The method is skipped
	// unless both the URL and TranscriptAPIToken are set.
	TranscriptAPIURL   string
	TranscriptAPIToken string
	WatchURL           string

	// Languages are preferred caption language codes, in order.
	Languages []string
	Timeout   time.Duration
}

func NewYouTubeExtractor(fetcher *Fetcher, opts YouTubeOptions, log *logging.Logger) *YouTubeExtractor {
	if opts.WatchURL == "" {
		opts.WatchURL = DefaultWatchURL
	}
	return &YouTubeExtractor{
		fetcher:       fetcher,
		transcriptAPI: opts.TranscriptAPIURL,
		apiToken:      opts.TranscriptAPIToken,
		watchURL:      opts.WatchURL,
		languages:     opts.Languages,
		timeout:       opts.Timeout,
		log:           orNop(log),
	}
}

// Transcript returns the video's transcript. Exhausting every method is
// not an error: the result comes back with Available false. Only context
// cancellation is reported as an error.
func (e *YouTubeExtractor) Transcript(ctx context.Context, videoID string) (*Transcript, error) {
	var providers []Provider[*Transcript]
	if e.transcriptAPI != "" && e.apiToken != "" {
		providers = append(providers, Provider[*Transcript]{
			Name:  "transcript-api",
			Fetch: func(ctx context.Context) (*Transcript, error) { return e.fromTranscriptAPI(ctx, videoID) },
		})
	}
	providers = append(providers, Provider[*Transcript]{
		Name:  "timedtext",
		Fetch: func(ctx context.Context) (*Transcript, error) { return e.fromWatchPage(ctx, videoID) },
	})

	chain := Chain[*Transcript]{Service: "youtube", Timeout: e.timeout, Log: e.log.With("video_id", videoID)}
	t, method, err := chain.Run(ctx, providers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.Warn("all transcript methods failed", "video_id", videoID, "error", err.Error())
		return &Transcript{VideoID: videoID, Available: false, Failure: err.Error()}, nil
	}

	t.VideoID = videoID
	t.Method = method
	t.Available = true
	if t.Title == "" {
		t.Title = DefaultVideoTitle
	}
	return t, nil
}

type transcriptAPIVideo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Tracks []struct {
		Language   string `json:"language"`
		Transcript []struct {
			Text string `json:"text"`
		} `json:"transcript"`
	} `json:"tracks"`
}

func (e *YouTubeExtractor) fromTranscriptAPI(ctx context.Context, videoID string) (*Transcript, error) {
	var videos []transcriptAPIVideo
	auth := http.Header{"Authorization": {"Basic " + e.apiToken}}
	if err := e.fetcher.PostJSON(ctx, e.transcriptAPI, map[string][]string{"ids": {videoID}}, &videos, auth); err != nil {
		return nil, err
	}
	if len(videos) == 0 || len(videos[0].Tracks) == 0 {
		return nil, fmt.Errorf("no transcript tracks")
	}

	video := videos[0]
	languages := make([]string, len(video.Tracks))
	for i, tr := range video.Tracks {
		languages[i] = tr.Language
	}
	track := video.Tracks[pickLanguage(languages, e.languages)]

	parts := make([]string, 0, len(track.Transcript))
	for _, seg := range track.Transcript {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	text := capsule.CollapseWhitespace(strings.Join(parts, " "))
	if text == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	return &Transcript{Title: video.Title, Text: text}, nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

func (e *YouTubeExtractor) fromWatchPage(ctx context.Context, videoID string) (*Transcript, error) {
	pageURL := e.watchURL + "?v=" + url.QueryEscape(videoID)
	page, err := e.fetcher.Get(ctx, pageURL, ProfileBrowser, http.Header{
		"Accept-Language": {"es-ES,es;q=0.9,en;q=0.8"},
	})
	if err != nil {
		return nil, err
	}
	body := string(page.Body)

	title := ""
	if m := youtubeTitlePattern.FindStringSubmatch(body); m != nil {
		title = html.UnescapeString(m[1])
	}

	tracks, err := parseCaptionTracks(body)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(tracks))
	for i, tr := range tracks {
		codes[i] = tr.LanguageCode
	}
	track := tracks[pickLanguage(codes, e.languages)]

	// JSON decoding already turned the escaped & separators into '&'.
	captions, err := e.fetcher.Get(ctx, track.BaseURL, ProfileBrowser, nil)
	if err != nil {
		return nil, fmt.Errorf("caption fetch: %w", err)
	}
	text, err := parseCaptionXML(string(captions.Body))
	if err != nil {
		return nil, err
	}
	return &Transcript{Title: title, Text: text}, nil
}

// parseCaptionTracks decodes the captionTracks array embedded in a watch
// page's player response.
func parseCaptionTracks(page string) ([]captionTrack, error) {
	idx := strings.Index(page, captionTracksMarker)
	if idx < 0 {
		return nil, fmt.Errorf("no captions available for this video")
	}

	var tracks []captionTrack
	dec := json.NewDecoder(strings.NewReader(page[idx+len(captionTracksMarker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}

	usable := tracks[:0]
	for _, tr := range tracks {
		if tr.BaseURL != "" {
			usable = append(usable, tr)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("could not extract caption url")
	}
	return usable, nil
}

// parseCaptionXML flattens a timedtext payload into one line of text.
// Segment text arrives entity-encoded twice, so it is unescaped once more
// after the parser's own decoding.
func parseCaptionXML(payload string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("parse captions: %w", err)
	}

	var parts []string
	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		seg := html.UnescapeString(s.Text())
		seg = strings.TrimSpace(strings.ReplaceAll(seg, "\n", " "))
		if seg != "" {
			parts = append(parts, seg)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("no transcript text found")
	}
	return capsule.CollapseWhitespace(strings.Join(parts, " ")), nil
}

// pickLanguage returns the index of the first available language matching
// a preference (exact or regional variant, case-insensitive), else 0.
func pickLanguage(available, preferred []string) int {
	for _, want := range preferred {
		want = strings.ToLower(want)
		for i, have := range available {
			have = strings.ToLower(have)
			if have == want || strings.HasPrefix(have, want+"-") {
				return i
			}
		}
	}
	return 0
}
