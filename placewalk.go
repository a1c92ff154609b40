package placewalk

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/placewalk/placewalk/cache"
	"github.com/placewalk/placewalk/filter"
	"github.com/placewalk/placewalk/geo"
	"github.com/placewalk/placewalk/imagestore"
	"github.com/placewalk/placewalk/model"
	"github.com/placewalk/placewalk/pager"
	"github.com/placewalk/placewalk/proximity"
	"github.com/placewalk/placewalk/snapshot"
	"github.com/placewalk/placewalk/store"
)

// Catalog is the top-level handle for catalog access. It owns one
// pagination session, an in-memory first-page cache and the wiring
// for filtering, image resolution and proximity watches.
//
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	store   store.Store
	engine  *pager.Engine
	images  imagestore.Resolver
	metrics MetricsCollector
	logger  *Logger
}

// New creates a Catalog over st.
func New(st store.Store, optFns ...Option) (*Catalog, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	o := applyOptions(optFns)

	cacheOpts := []cache.Option{cache.WithDefaultTTL(o.firstPageTTL)}
	if o.cacheSize > 0 {
		cacheOpts = append(cacheOpts, cache.WithMaxSize(o.cacheSize))
	}

	engine := pager.New(st, cache.New[model.Page](cacheOpts...),
		pager.WithPageSize(o.pageSize),
		pager.WithFirstPageTTL(o.firstPageTTL),
		pager.WithFetchTimeout(o.fetchTimeout),
		pager.WithLogger(o.logger.Logger),
	)

	return &Catalog{
		store:   st,
		engine:  engine,
		images:  o.images,
		metrics: o.metricsCollector,
		logger:  o.logger,
	}, nil
}

// FirstPage loads the first page for f, serving a cached copy when a
// fresh one exists. Switching to a different filter discards the
// accumulated entries and starts over. A store failure degrades to an
// empty terminal page; it never surfaces as an error.
func (c *Catalog) FirstPage(ctx context.Context, f store.Filter) model.Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	page, fromCache := c.engine.FirstPage(ctx, f)
	c.metrics.RecordFirstPage(time.Since(start), fromCache)
	c.logger.LogFirstPage(ctx, f.Key(), len(page.Entries), fromCache)
	return page
}

// LoadMore fetches the page after the current cursor and appends it to
// the accumulated set. Once pagination is exhausted or a fetch fails,
// LoadMore keeps returning empty pages until Refresh or a filter
// switch.
func (c *Catalog) LoadMore(ctx context.Context) model.Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	page := c.engine.NextPage(ctx)
	c.metrics.RecordLoadMore(len(page.Entries), time.Since(start))
	c.logger.LogLoadMore(ctx, c.engine.FilterKey(), len(page.Entries), page.HasMore)
	return page
}

// Refresh drops the cached pages and accumulated entries for f. The
// next FirstPage for f is guaranteed to hit the store.
func (c *Catalog) Refresh(ctx context.Context, f store.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.Refresh(f)
	c.metrics.RecordRefresh()
	c.logger.LogRefresh(ctx, f.Key())
}

// Entries returns a copy of every entry accumulated so far, in fetch
// order.
func (c *Catalog) Entries() []model.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Entries()
}

// HasMore reports whether another LoadMore call can yield data.
func (c *Catalog) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.HasMore()
}

// Visible runs the filter pipeline over the accumulated entries and
// returns the entries a list UI should render, in a deterministic
// order. The accumulated set is not modified.
func (c *Catalog) Visible(ctx context.Context, criteria filter.Criteria) []model.Entry {
	c.mu.Lock()
	entries := c.engine.Entries()
	c.mu.Unlock()

	start := time.Now()
	visible := filter.Apply(entries, criteria)
	c.metrics.RecordVisible(len(entries), len(visible), time.Since(start))
	c.logger.LogVisible(ctx, len(entries), len(visible))
	return visible
}

// Entry fetches a single entry by ID, bypassing pagination.
func (c *Catalog) Entry(ctx context.Context, id string) (model.Entry, error) {
	return c.store.FetchOne(ctx, id)
}

// ImageURLs resolves the image keys of the accumulated entries to
// renderable URLs. Entries without images and keys the image store no
// longer holds are left out.
func (c *Catalog) ImageURLs(ctx context.Context) (map[string]string, error) {
	if c.images == nil {
		return nil, ErrNoImageResolver
	}

	entries := c.Entries()
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.ImageKey != "" {
			keys = append(keys, e.ImageKey)
		}
	}
	return imagestore.Prefetch(ctx, c.images, keys, 0)
}

// Snapshot writes the accumulated entries to w so they can be restored
// later without a store round trip.
func (c *Catalog) Snapshot(ctx context.Context, w io.Writer, compression snapshot.Compression) error {
	entries := c.Entries()
	err := snapshot.Save(w, entries, compression)
	c.logger.LogSnapshot(ctx, "save", len(entries), err)
	return err
}

// Restore replaces the accumulated entries with a snapshot written by
// Snapshot. The restored session is terminal; a later FirstPage call
// resumes store-backed pagination.
func (c *Catalog) Restore(ctx context.Context, r io.Reader) error {
	entries, err := snapshot.Load(r)
	if err != nil {
		c.logger.LogSnapshot(ctx, "restore", 0, err)
		return err
	}

	c.mu.Lock()
	c.engine.Restore(entries)
	c.mu.Unlock()

	c.logger.LogSnapshot(ctx, "restore", len(entries), nil)
	return nil
}

// Watch starts a proximity watch on target: onArrive fires exactly
// once when a position within the arrival threshold is observed, and
// the watch stops itself. The returned detector can be stopped early.
//
// Positions come from stream, which stays subscribed until arrival,
// Stop, or ctx cancellation.
func (c *Catalog) Watch(ctx context.Context, stream proximity.Stream, target *geo.Point, onArrive proximity.ArriveFunc, onError proximity.ErrorFunc, opts ...proximity.Option) (*proximity.Detector, error) {
	if target == nil || !target.Valid() {
		return nil, ErrNoCoordinates
	}
	if onArrive == nil {
		return nil, proximity.ErrNilArriveFunc
	}

	opts = append([]proximity.Option{proximity.WithLogger(c.logger.Logger)}, opts...)
	detector := proximity.New(stream, *target, opts...)

	arrive := func(pos proximity.Position, distanceMeters float64) {
		c.metrics.RecordArrival(distanceMeters)
		onArrive(pos, distanceMeters)
	}
	if err := detector.Start(ctx, arrive, onError); err != nil {
		return nil, err
	}
	return detector, nil
}
