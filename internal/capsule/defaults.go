package capsule

import (
	"math"
	"strings"
)

const (
	// DefaultReadTime is used when the model gives no usable read time.
	DefaultReadTime = 30

	// UntitledPlaceholder is the last-resort title.
	UntitledPlaceholder = "Untitled capsule"
)

// Fields is a fully-defaulted draft: every enum holds a legal value and
// every list is non-nil.
type Fields struct {
	Title          string
	Summary        string
	Actions        []string
	Priority       Priority
	Sentiment      Sentiment
	Tags           []string
	ReadTime       int
	KeyInsights    []string
	Deadline       *string
	ClipboardReady []string
	ExtractedText  *string
	MediaAnalysis  *string
}

var priorityAliases = map[string]Priority{
	"high":   PriorityHigh,
	"medium": PriorityMedium,
	"low":    PriorityLow,
	"alta":   PriorityHigh,
	"media":  PriorityMedium,
	"baja":   PriorityLow,
}

var sentimentAliases = map[string]Sentiment{
	"positive":    SentimentPositive,
	"neutral":     SentimentNeutral,
	"negative":    SentimentNegative,
	"urgent":      SentimentUrgent,
	"positivo":    SentimentPositive,
	"neutro":      SentimentNeutral,
	"negativo":    SentimentNegative,
	"urgente":     SentimentUrgent,
	"opportunity": SentimentPositive,
	"warning":     SentimentNegative,
}

// ApplyDefaults fills missing or malformed draft fields. fallbackTitle is
// used when the draft has no title (an article headline or filename);
// when it is empty too, UntitledPlaceholder is used.
func ApplyDefaults(d *Draft, fallbackTitle string) Fields {
	if d == nil {
		d = &Draft{}
	}

	f := Fields{
		Title:          UntitledPlaceholder,
		Actions:        orEmpty(d.Actions),
		Priority:       PriorityMedium,
		Sentiment:      SentimentNeutral,
		Tags:           orEmpty(d.Tags),
		ReadTime:       DefaultReadTime,
		KeyInsights:    orEmpty(d.KeyInsights),
		Deadline:       d.Deadline,
		ClipboardReady: orEmpty(d.ClipboardReady),
		ExtractedText:  d.ExtractedText,
		MediaAnalysis:  d.MediaAnalysis,
	}

	switch {
	case d.Title != nil:
		f.Title = *d.Title
	case strings.TrimSpace(fallbackTitle) != "":
		f.Title = strings.TrimSpace(fallbackTitle)
	}

	if d.Summary != nil {
		f.Summary = *d.Summary
	}

	if d.Priority != nil {
		if p, ok := priorityAliases[strings.ToLower(*d.Priority)]; ok {
			f.Priority = p
		}
	}

	if d.Sentiment != nil {
		if s, ok := sentimentAliases[strings.ToLower(*d.Sentiment)]; ok {
			f.Sentiment = s
		}
	}

	if d.ReadTime != nil && !math.IsNaN(*d.ReadTime) && !math.IsInf(*d.ReadTime, 0) {
		if seconds := int(math.Round(*d.ReadTime)); seconds >= 1 {
			f.ReadTime = seconds
		}
	}

	return f
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
