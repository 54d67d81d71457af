// Package extract turns classified references into model-ready content:
// plain text where it can be fetched locally, or a media reference the
// model reads directly.
package extract

import (
	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/logging"
)

// MinTextChars is the least extracted text a URL must yield to be usable.
const MinTextChars = 50

// MediaRef points the model at media it should read itself. Exactly one of
// URI and Data is set.
type MediaRef struct {
	MIMEType string

	// URI is an uploaded file handle or a public video URL.
	URI string

	// Data is an inline payload.
	Data []byte
}

// Inline reports whether the payload travels with the request.
func (m *MediaRef) Inline() bool {
	return m != nil && len(m.Data) > 0
}

// Content is the normalized representation handed to the prompt builder.
// At least one of Text and Media is populated.
type Content struct {
	SourceType capsule.SourceType
	Text       string
	Media      *MediaRef

	// Title is a best-known label (page title, video title, filename) used
	// when the model proposes none.
	Title string

	// Provenance is the original URL or filename.
	Provenance string

	// Method names the provider that produced the content, e.g. "fxtwitter".
	Method string
}

// Empty reports whether the content carries neither text nor media.
func (c *Content) Empty() bool {
	return c == nil || (c.Text == "" && c.Media == nil)
}

func orNop(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.Nop()
	}
	return l
}
