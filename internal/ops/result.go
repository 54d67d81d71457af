package ops

import (
	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
)

// Result is the caller-facing envelope for one pipeline run.
type Result struct {
	Success     bool             `json:"success"`
	Capsule     *capsule.Capsule `json:"capsule,omitempty"`
	ErrorKind   errors.ErrorCode `json:"errorKind,omitempty"`
	Message     string           `json:"message,omitempty"`
	RawResponse string           `json:"rawResponse,omitempty"`
	RetryAfter  int              `json:"retryAfter,omitempty"`

	// Status is the HTTP status matching ErrorKind; not serialized.
	Status int `json:"-"`
}

// NewResult wraps the outcome of Create. Errors that are not BriefErrors
// are reported as Internal.
func NewResult(c *capsule.Capsule, err error) Result {
	if err == nil {
		return Result{Success: true, Capsule: c, Status: 200}
	}

	bErr, ok := errors.As(err)
	if !ok {
		bErr = errors.NewInternal(err)
	}
	return Result{
		Success:     false,
		ErrorKind:   bErr.Code,
		Message:     bErr.Message,
		RawResponse: bErr.RawResponse,
		RetryAfter:  errors.RetryAfter(bErr),
		Status:      bErr.Status,
	}
}
