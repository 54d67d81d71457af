package ops

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/focusbrief/internal/source"
)

// DefaultBatchConcurrency is used when the pipeline sets none.
const DefaultBatchConcurrency = 4

// MaxBatchItems bounds one batch call.
const MaxBatchItems = 50

// Batch runs Create for every reference with bounded concurrency. Each
// item gets its own envelope, in input order; one failure never aborts
// the others.
func (p *Pipeline) Batch(ctx context.Context, refs []source.Reference) []Result {
	results := make([]Result, len(refs))

	limit := p.BatchConcurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			c, err := p.Create(gctx, ref)
			results[i] = NewResult(c, err)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
