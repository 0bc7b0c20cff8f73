package wargaming

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/wgapi/wgapi"
)

// DefaultPrefetchLimit bounds concurrent requests made by Prefetch
const DefaultPrefetchLimit = 5

// Prefetch fetches the current page of every result concurrently so later
// accesses are served from the cache. The first error cancels the rest.
func Prefetch(ctx context.Context, limit int, results ...*wgapi.Result) error {
	if len(results) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultPrefetchLimit
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, res := range results {
		g.Go(func() error {
			_, err := res.Data(ctx)
			return err
		})
	}

	return g.Wait()
}
