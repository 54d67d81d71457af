package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/logging"
)

// Provider is one named method in a fallback chain.
type Provider[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Failure records why one method in a chain failed.
type Failure struct {
	Method string
	Err    error
}

// ChainError is returned when every method in a chain failed. It keeps
// every failure, in the order the methods were tried.
type ChainError struct {
	Service  string
	Failures []Failure
}

func (e *ChainError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Method + ": " + f.Err.Error()
	}
	return fmt.Sprintf("%s: all %d methods failed: %s", e.Service, len(e.Failures), strings.Join(parts, "; "))
}

// Methods lists the failed method names in try order.
func (e *ChainError) Methods() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Method
	}
	return out
}

// Chain runs providers strictly in order and stops at the first success.
type Chain[T any] struct {
	// Service names the chain in logs and errors.
	Service string

	// Timeout bounds each method separately. Zero means only the caller's
	// context applies.
	Timeout time.Duration

	Log *logging.Logger
}

// Run tries each provider in order. It returns the first result and the
// name of the method that produced it. When all fail the error is a
// *ChainError. Cancellation of ctx stops the chain and returns ctx.Err().
func (c Chain[T]) Run(ctx context.Context, providers []Provider[T]) (T, string, error) {
	var zero T
	log := orNop(c.Log)
	chainErr := &ChainError{Service: c.Service}

	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		result, err := c.attempt(ctx, p)
		log.ExternalFetch(c.Service, p.Name, "", err)
		if err == nil {
			return result, p.Name, nil
		}
		if ctx.Err() != nil {
			return zero, "", ctx.Err()
		}
		chainErr.Failures = append(chainErr.Failures, Failure{Method: p.Name, Err: err})
	}

	if len(chainErr.Failures) == 0 {
		chainErr.Failures = append(chainErr.Failures, Failure{Method: "none", Err: fmt.Errorf("no methods configured")})
	}
	return zero, "", chainErr
}

func (c Chain[T]) attempt(ctx context.Context, p Provider[T]) (T, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return p.Fetch(ctx)
}

// TryInOrder runs providers with no per-method timeout and no logging.
func TryInOrder[T any](ctx context.Context, providers []Provider[T]) (T, string, error) {
	return Chain[T]{Service: "fallback"}.Run(ctx, providers)
}
