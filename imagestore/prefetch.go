package imagestore

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultPrefetchParallelism bounds concurrent URL resolutions when
// the caller does not choose a limit.
const DefaultPrefetchParallelism = 8

// Prefetch resolves image URLs for a set of keys concurrently and
// returns a key to URL map. Duplicate and empty keys are collapsed,
// keys that do not exist are left out of the result, and any other
// resolution error aborts the whole prefetch.
func Prefetch(ctx context.Context, res Resolver, keys []string, parallelism int64) (map[string]string, error) {
	if parallelism <= 0 {
		parallelism = DefaultPrefetchParallelism
	}

	unique := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key != "" {
			unique[key] = struct{}{}
		}
	}

	var (
		mu   sync.Mutex
		urls = make(map[string]string, len(unique))
	)

	sem := semaphore.NewWeighted(parallelism)
	g, ctx := errgroup.WithContext(ctx)

	for key := range unique {
		key := key
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			u, err := res.URL(ctx, key)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			mu.Lock()
			urls[key] = u
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
