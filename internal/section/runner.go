package section

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runner executes fn for every index in [0, n). Implementations stop at the
// first error and return it. Callers write results by index, so output order
// does not depend on completion order.
type Runner interface {
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Sequential runs items one at a time in index order.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Bounded runs up to Limit items concurrently. The first error cancels the
// context handed to the remaining items.
type Bounded struct {
	Limit int
}

func (b Bounded) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	limit := b.Limit
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

// NewRunner returns Sequential for limit <= 1 and Bounded otherwise.
func NewRunner(limit int) Runner {
	if limit <= 1 {
		return Sequential{}
	}
	return Bounded{Limit: limit}
}
