// Package source models raw user input and classifies it into a source type
// and extraction strategy.
package source

import "github.com/hpungsan/focusbrief/internal/capsule"

// Kind is the shape of user input.
type Kind string

const (
	KindText Kind = "text"
	KindURL  Kind = "url"
	KindFile Kind = "file"
)

// Reference is one piece of user input.
type Reference struct {
	Kind Kind

	// Text is the raw text body (KindText).
	Text string

	// Label names the origin of the input. For text it defaults to
	// "Manual"; for files it overrides the filename.
	Label string

	// URL is the link to fetch (KindURL).
	URL string

	// Data, MIMEType and FileName describe an uploaded file (KindFile).
	Data     []byte
	MIMEType string
	FileName string
}

// Strategy selects the extractor used for a classified reference.
type Strategy string

const (
	StrategyPassThrough Strategy = "pass-through"
	StrategyArticle     Strategy = "article"
	StrategyTranscript  Strategy = "transcript"
	StrategyMirror      Strategy = "mirror"
	StrategyPDF         Strategy = "pdf"
	StrategyDocument    Strategy = "document"
	StrategyMedia       Strategy = "media"
)

// Classification is the result of Classify.
type Classification struct {
	SourceType capsule.SourceType
	Strategy   Strategy

	// VideoID is set for YouTube links.
	VideoID string

	// TweetID is set for Twitter/X status links.
	TweetID string
}

const (
	defaultTextLabel = "Manual"
	defaultFileLabel = "Upload"
)

// SourceLabel returns the provenance string recorded on the capsule.
func (r Reference) SourceLabel() string {
	switch r.Kind {
	case KindURL:
		return r.URL
	case KindFile:
		if r.Label != "" {
			return r.Label
		}
		if r.FileName != "" {
			return r.FileName
		}
		return defaultFileLabel
	default:
		if r.Label != "" {
			return r.Label
		}
		return defaultTextLabel
	}
}
