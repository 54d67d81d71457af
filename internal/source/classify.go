package source

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	tweetIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// Classify maps a reference to a source type and extraction strategy.
// It is pure: the same reference always yields the same result.
func Classify(ref Reference) (Classification, error) {
	switch ref.Kind {
	case KindText:
		return Classification{SourceType: capsule.SourceText, Strategy: StrategyPassThrough}, nil
	case KindURL:
		return classifyURL(ref.URL)
	case KindFile:
		return classifyMIME(ref.MIMEType)
	default:
		return Classification{}, errors.NewInvalidInput("unknown content kind: " + string(ref.Kind))
	}
}

func classifyURL(raw string) (Classification, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return Classification{}, err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case hostIs(host, "youtube.com", "youtu.be"):
		if id := YouTubeID(u); id != "" {
			return Classification{SourceType: capsule.SourceYouTube, Strategy: StrategyTranscript, VideoID: id}, nil
		}
	case hostIs(host, "twitter.com", "x.com"):
		if id := TweetID(u); id != "" {
			return Classification{SourceType: capsule.SourceTwitter, Strategy: StrategyMirror, TweetID: id}, nil
		}
	case hostIs(host, "linkedin.com"):
		return Classification{SourceType: capsule.SourceLinkedIn, Strategy: StrategyArticle}, nil
	case hostIs(host, "github.com"):
		return Classification{SourceType: capsule.SourceGitHub, Strategy: StrategyArticle}, nil
	}

	if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return Classification{SourceType: capsule.SourcePDF, Strategy: StrategyPDF}, nil
	}
	return Classification{SourceType: capsule.SourceArticle, Strategy: StrategyArticle}, nil
}

// ParseURL parses raw and requires an absolute http(s) URL with a host.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.NewInvalidInput("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.NewInvalidInput("malformed url: " + raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewInvalidInput("url must use http or https: " + raw)
	}
	if u.Hostname() == "" {
		return nil, errors.NewInvalidInput("url has no host: " + raw)
	}
	return u, nil
}

// YouTubeID returns the 11-character video id of a watch, short-link,
// shorts, embed or live URL, or "" when none is present.
func YouTubeID(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := pathSegments(u.Path)

	var id string
	switch {
	case hostIs(host, "youtu.be"):
		if len(segments) > 0 {
			id = segments[0]
		}
	case len(segments) >= 2 && (segments[0] == "shorts" || segments[0] == "embed" || segments[0] == "live" || segments[0] == "v"):
		id = segments[1]
	default:
		id = u.Query().Get("v")
	}

	if videoIDPattern.MatchString(id) {
		return id
	}
	return ""
}

// TweetID returns the numeric status id of a /<user>/status/<id> URL, or "".
func TweetID(u *url.URL) string {
	segments := pathSegments(u.Path)
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "status" && tweetIDPattern.MatchString(segments[i+1]) {
			return segments[i+1]
		}
	}
	return ""
}

// classifyMIME accepts image/audio/video families by prefix and documents
// by exact match.
func classifyMIME(mimeType string) (Classification, error) {
	mt := baseMIME(mimeType)
	switch {
	case mt == "":
		return Classification{}, errors.NewInvalidInput("file mime type is required")
	case strings.HasPrefix(mt, "image/"):
		return Classification{SourceType: capsule.SourceImage, Strategy: StrategyMedia}, nil
	case strings.HasPrefix(mt, "audio/"):
		return Classification{SourceType: capsule.SourceAudio, Strategy: StrategyMedia}, nil
	case strings.HasPrefix(mt, "video/"):
		return Classification{SourceType: capsule.SourceVideo, Strategy: StrategyMedia}, nil
	case mt == "application/pdf":
		return Classification{SourceType: capsule.SourcePDF, Strategy: StrategyMedia}, nil
	case mt == "text/plain":
		return Classification{SourceType: capsule.SourceDocument, Strategy: StrategyDocument}, nil
	default:
		return Classification{}, errors.NewUnsupportedMediaType(mimeType)
	}
}

func hostIs(host string, domains ...string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// baseMIME lowercases a MIME type and drops parameters such as charset.
func baseMIME(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
