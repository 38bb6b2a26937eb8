package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wowprofile/pkg/logger"
)

// Task produces the result for position index. It must honour ctx.
type Task[T any] func(ctx context.Context, index int) (T, error)

// Map runs task for every index in [0, n) with at most limit tasks in
// flight (limit <= 0 means no bound). Result i is always task i's value,
// whatever order tasks finish in. The first failure cancels the context
// passed to the remaining tasks and is returned; partial results are
// discarded.
func Map[T any](ctx context.Context, limit, n int, task Task[T]) ([]T, error) {
	if n == 0 {
		return []T{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	out := make([]T, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := task(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Pool is a reusable Map configuration that logs each batch.
type Pool struct {
	limit  int
	logger logger.Logger
}

// New creates a Pool running at most limit tasks at once.
func New(limit int, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{limit: limit, logger: log}
}

// Limit returns the configured concurrency bound (0 for unbounded).
func (p *Pool) Limit() int {
	if p.limit < 0 {
		return 0
	}
	return p.limit
}

// Run is Map using p's bound, with batch logging.
func Run[T any](ctx context.Context, p *Pool, name string, n int, task Task[T]) ([]T, error) {
	p.logger.DebugWithFields("Starting batch", map[string]interface{}{
		"batch":       name,
		"tasks":       n,
		"concurrency": p.Limit(),
	})

	out, err := Map(ctx, p.limit, n, task)
	if err != nil {
		p.logger.WithError(err).DebugWithFields("Batch aborted", map[string]interface{}{
			"batch": name,
		})
		return nil, err
	}
	return out, nil
}
