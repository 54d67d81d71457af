package capsule

import "time"

// CapsuleSummary is a capsule's metadata without its body fields.
// Used for list operations to reduce data transfer.
type CapsuleSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Priority   Priority   `json:"priority"`
	Sentiment  Sentiment  `json:"sentiment"`
	Tags       []string   `json:"tags"`
	ReadTime   int        `json:"readTime"`
	Deadline   *string    `json:"deadline"`
	Source     string     `json:"source"`
	SourceType SourceType `json:"sourceType"`

	// ActionCount is len(Actions) of the full capsule
	ActionCount int `json:"actionCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// ToSummary converts a Capsule to a CapsuleSummary.
func (c *Capsule) ToSummary() CapsuleSummary {
	return CapsuleSummary{
		ID:          c.ID,
		Title:       c.Title,
		Priority:    c.Priority,
		Sentiment:   c.Sentiment,
		Tags:        c.Tags,
		ReadTime:    c.ReadTime,
		Deadline:    c.Deadline,
		Source:      c.Source,
		SourceType:  c.SourceType,
		ActionCount: len(c.Actions),
		CreatedAt:   c.CreatedAt,
	}
}
