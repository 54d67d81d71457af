package capsule

import "time"

// SourceType identifies the kind of content a capsule was distilled from.
type SourceType string

const (
	SourceText     SourceType = "text"
	SourceArticle  SourceType = "article"
	SourceYouTube  SourceType = "youtube"
	SourceTwitter  SourceType = "twitter"
	SourceLinkedIn SourceType = "linkedin"
	SourceGitHub   SourceType = "github"
	SourcePDF      SourceType = "pdf"
	SourceDocument SourceType = "document"
	SourceImage    SourceType = "image"
	SourceAudio    SourceType = "audio"
	SourceVideo    SourceType = "video"
)

// SourceTypes lists every SourceType in a stable order.
var SourceTypes = []SourceType{
	SourceText, SourceArticle, SourceYouTube, SourceTwitter, SourceLinkedIn,
	SourceGitHub, SourcePDF, SourceDocument, SourceImage, SourceAudio, SourceVideo,
}

// Valid reports whether s is a known SourceType.
func (s SourceType) Valid() bool {
	for _, v := range SourceTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Priority is the urgency of the actions in a capsule.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Sentiment is the emotional or informational tone of the source.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUrgent   Sentiment = "urgent"
)

// Capsule is the finished, action-oriented summary of one piece of content.
type Capsule struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Actions   []string  `json:"actions"`
	Priority  Priority  `json:"priority"`
	Sentiment Sentiment `json:"sentiment"`
	Tags      []string  `json:"tags"`

	// ReadTime is the estimated time to read the capsule, in seconds; always positive.
	ReadTime int `json:"readTime"`

	KeyInsights []string `json:"keyInsights"`
	Deadline    *string  `json:"deadline"`

	// ClipboardReady holds prompts, commands or addresses meant to be copied as-is.
	ClipboardReady []string `json:"clipboardReady"`

	ExtractedText *string `json:"extractedText"`
	MediaAnalysis *string `json:"mediaAnalysis"`

	// Source is the URL, filename, or caller label the content came from.
	Source     string     `json:"source"`
	SourceType SourceType `json:"sourceType"`

	// Model is the generation model that produced the draft.
	Model string `json:"model,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}
