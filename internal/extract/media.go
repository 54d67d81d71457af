package extract

import (
	"context"

	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
)

const (
	// DefaultMaxMediaBytes is the hard ceiling on one uploaded file.
	DefaultMaxMediaBytes int64 = 50 << 20

	// DefaultInlineMediaMaxBytes is the largest payload sent inline.
	DefaultInlineMediaMaxBytes int64 = 20 << 20
)

// Uploader stores media out of band and returns a handle the model can read.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType, displayName string) (*MediaRef, error)
}

// MediaExtractor packages raw file bytes for direct multimodal submission.
// It never reads text locally.
type MediaExtractor struct {
	maxBytes  int64
	inlineMax int64
	uploader  Uploader
	log       *logging.Logger
}

// NewMediaExtractor builds a packager. With a nil uploader every accepted
// payload is sent inline.
func NewMediaExtractor(maxBytes, inlineMax int64, uploader Uploader, log *logging.Logger) *MediaExtractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMediaBytes
	}
	if inlineMax <= 0 {
		inlineMax = DefaultInlineMediaMaxBytes
	}
	return &MediaExtractor{maxBytes: maxBytes, inlineMax: inlineMax, uploader: uploader, log: orNop(log)}
}

// Package validates the payload size before any network call, then either
// inlines the bytes or uploads them.
func (e *MediaExtractor) Package(ctx context.Context, data []byte, mimeType, name string) (*MediaRef, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, errors.NewInvalidInput("file is empty")
	}
	if size > e.maxBytes {
		return nil, errors.NewPayloadTooLarge("file", e.maxBytes, size)
	}

	if size <= e.inlineMax || e.uploader == nil {
		return &MediaRef{MIMEType: mimeType, Data: data}, nil
	}

	ref, err := e.uploader.Upload(ctx, data, mimeType, name)
	e.log.ExternalFetch("files", "upload", name, err)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewGeneration("media upload failed: "+err.Error(), err)
	}
	return ref, nil
}
