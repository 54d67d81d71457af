package capsule

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDPrefix starts every capsule id.
const IDPrefix = "cap_"

// Provenance is the pipeline's authoritative record of where content came
// from. It always overrides anything the model proposes.
type Provenance struct {
	Source     string
	SourceType SourceType
	Model      string
}

// Assembler stamps identity and provenance onto defaulted fields.
type Assembler struct {
	// Now returns the creation time. Defaults to time.Now.
	Now func() time.Time
}

// NewAssembler returns an Assembler using the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{Now: time.Now}
}

// Assemble builds the final Capsule.
func (a *Assembler) Assemble(f Fields, p Provenance) *Capsule {
	now := time.Now
	if a != nil && a.Now != nil {
		now = a.Now
	}
	createdAt := now().UTC().Truncate(time.Millisecond)

	return &Capsule{
		ID:             NewID(createdAt),
		Title:          f.Title,
		Summary:        f.Summary,
		Actions:        f.Actions,
		Priority:       f.Priority,
		Sentiment:      f.Sentiment,
		Tags:           f.Tags,
		ReadTime:       f.ReadTime,
		KeyInsights:    f.KeyInsights,
		Deadline:       f.Deadline,
		ClipboardReady: f.ClipboardReady,
		ExtractedText:  f.ExtractedText,
		MediaAnalysis:  f.MediaAnalysis,
		Source:         p.Source,
		SourceType:     p.SourceType,
		Model:          p.Model,
		CreatedAt:      createdAt,
	}
}

// NewID returns a capsule id: the prefix plus a lowercase ULID, which is a
// millisecond timestamp followed by a random suffix.
func NewID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return IDPrefix + strings.ToLower(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}
