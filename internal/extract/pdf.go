package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/logging"
)

// PDFDocument is a downloaded PDF with whatever text could be read locally.
type PDFDocument struct {
	Data []byte

	// Text is empty when the PDF has no usable text layer (scans, images).
	Text string
}

// PDFExtractor downloads PDFs linked by URL and reads their text layer.
type PDFExtractor struct {
	fetcher  *Fetcher
	timeout  time.Duration
	maxChars int
	log      *logging.Logger
}

func NewPDFExtractor(fetcher *Fetcher, timeout time.Duration, maxChars int, log *logging.Logger) *PDFExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxArticleChars
	}
	return &PDFExtractor{fetcher: fetcher, timeout: timeout, maxChars: maxChars, log: orNop(log)}
}

// Extract downloads rawURL. A PDF whose text layer is shorter than
// MinTextChars comes back with empty Text so the caller can hand the
// bytes to the model instead.
func (e *PDFExtractor) Extract(ctx context.Context, rawURL string) (*PDFDocument, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.fetcher.Get(ctx, rawURL, ProfileBrowser, nil)
	e.log.ExternalFetch("pdf", "http_get", rawURL, err)
	if err != nil {
		return nil, errors.NewFetch(fmt.Sprintf("could not fetch %s: %v", rawURL, err), err)
	}

	doc := &PDFDocument{Data: resp.Body}
	text, err := PDFText(resp.Body)
	if err != nil {
		e.log.Debug("pdf text layer unreadable", "url", rawURL, "error", err.Error())
		return doc, nil
	}
	if capsule.CountChars(text) >= MinTextChars {
		doc.Text = capsule.Truncate(text, e.maxChars)
	}
	return doc, nil
}

// PDFText returns the plain text of an in-memory PDF with whitespace
// collapsed.
func PDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("pdf content is empty")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return capsule.CollapseWhitespace(buf.String()), nil
}
