package pager

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/placewalk/placewalk/cache"
	"github.com/placewalk/placewalk/model"
	"github.com/placewalk/placewalk/store"
)

const (
	// DefaultPageSize is the number of entries requested per page.
	DefaultPageSize = 20
	// DefaultFirstPageTTL bounds how long a cached first page is served.
	DefaultFirstPageTTL = 10 * time.Minute
	// DefaultFetchTimeout bounds each store call, independent of any
	// transport-level timeout.
	DefaultFetchTimeout = 30 * time.Second
)

// cachePrefix namespaces the engine's keys in the shared cache.
const cachePrefix = "page"

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the page size. Values <= 0 keep the default.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithFirstPageTTL sets the cache TTL for first pages.
func WithFirstPageTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithFetchTimeout sets the per-call store timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine pages through one filter's view of the catalog.
//
// It exclusively owns the accumulated entry set and the current
// cursor; readers get snapshots. See the package comment for the
// concurrency contract.
type Engine struct {
	store    store.Store
	cache    *cache.Cache[model.Page]
	pageSize int
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	// Session state for the current filter.
	filter    store.Filter
	filterKey string
	started   bool
	entries   []model.Entry
	seen      map[string]struct{}
	cursor    *model.Cursor
	hasMore   bool
}

// New creates an Engine over st, using c for first-page caching.
func New(st store.Store, c *cache.Cache[model.Page], opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		cache:    c,
		pageSize: DefaultPageSize,
		ttl:      DefaultFirstPageTTL,
		timeout:  DefaultFetchTimeout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FirstPage returns the first page for f, serving from cache when a
// fresh copy exists. fromCache reports whether the store was skipped.
//
// Calling FirstPage with a different filter than the current session's
// discards the accumulated state and starts a new session. A store
// failure yields an empty terminal page and is never cached.
func (e *Engine) FirstPage(ctx context.Context, f store.Filter) (page model.Page, fromCache bool) {
	key := f.Key()
	if !e.started || key != e.filterKey {
		e.resetSession(f, key)
	}

	cacheKey := firstPageKey(key)
	if cached, ok := e.cache.Get(cacheKey); ok {
		e.logger.Debug("first page served from cache", "filter", key, "entries", len(cached.Entries))
		e.restartAccumulation(cached)
		return cached, true
	}

	res, err := e.fetch(ctx, store.PageQuery{Filter: f, Limit: e.pageSize})
	if err != nil {
		e.logger.Warn("first page fetch failed, degrading to empty page", "filter", key, "error", err)
		e.restartAccumulation(model.Page{})
		return model.Page{}, false
	}

	page = toPage(res)
	e.cache.SetTTL(cacheKey, page, e.ttl)
	e.restartAccumulation(page)

	e.logger.Debug("first page fetched", "filter", key, "entries", len(page.Entries), "has_more", page.HasMore)
	return page, false
}

// NextPage fetches the page after the current cursor. Next pages are
// never cached; they are rarely revisited.
//
// On a store failure or timeout the session goes terminal: the result
// is an empty page with HasMore false, and it stays that way until
// Refresh. Exhausted pagination returns the same terminal page.
func (e *Engine) NextPage(ctx context.Context) model.Page {
	if e.cursor == nil {
		return model.Page{}
	}
	if e.cursor.Filter != e.filterKey {
		// A cursor minted under another filter is never combined with
		// this one; drop it instead.
		e.logger.Warn("cursor filter mismatch, stopping pagination",
			"cursor_filter", e.cursor.Filter, "filter", e.filterKey)
		e.stopPagination()
		return model.Page{}
	}

	res, err := e.fetch(ctx, store.PageQuery{Filter: e.filter, Cursor: e.cursor, Limit: e.pageSize})
	if err != nil {
		e.logger.Warn("next page fetch failed, degrading to empty page", "filter", e.filterKey, "error", err)
		e.stopPagination()
		return model.Page{}
	}

	page := toPage(res)
	e.appendEntries(page.Entries)
	e.cursor = page.Cursor
	e.hasMore = page.HasMore

	e.logger.Debug("next page fetched", "filter", e.filterKey, "entries", len(page.Entries), "has_more", page.HasMore)
	return page
}

// Refresh discards all progress for f: cached pages, accumulated
// entries and the cursor. The next FirstPage is guaranteed to call the
// store, even inside the previous TTL window.
func (e *Engine) Refresh(f store.Filter) {
	key := f.Key()
	e.cache.InvalidatePrefix(pageFamilyPrefix(key))
	e.resetSession(f, key)
	e.logger.Debug("pagination refreshed", "filter", key)
}

// Restore replaces the session with a pre-loaded entry set, typically
// from an offline snapshot. The restored session is terminal: HasMore
// is false and no cursor exists. A later FirstPage call starts a fresh
// store-backed session as usual.
func (e *Engine) Restore(entries []model.Entry) {
	e.resetSession(nil, store.Filter(nil).Key())
	e.appendEntries(entries)
	e.logger.Debug("session restored", "entries", len(e.entries))
}

// Entries returns a copy of the accumulated entry set, in fetch order.
func (e *Engine) Entries() []model.Entry {
	out := make([]model.Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// FilterKey returns the canonical key of the session's filter.
func (e *Engine) FilterKey() string {
	return e.filterKey
}

// HasMore reports whether another NextPage call can yield data.
func (e *Engine) HasMore() bool {
	return e.hasMore
}

// PageSize returns the configured page size.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// fetch performs one store call under the engine's own timeout.
func (e *Engine) fetch(ctx context.Context, q store.PageQuery) (store.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.store.FetchPage(ctx, q)
}

func (e *Engine) resetSession(f store.Filter, key string) {
	e.filter = f
	e.filterKey = key
	e.started = true
	e.entries = nil
	e.seen = make(map[string]struct{})
	e.cursor = nil
	e.hasMore = false
}

// restartAccumulation seeds the session state from a first page.
func (e *Engine) restartAccumulation(page model.Page) {
	e.entries = nil
	e.seen = make(map[string]struct{})
	e.appendEntries(page.Entries)
	e.cursor = page.Cursor
	e.hasMore = page.HasMore
}

func (e *Engine) stopPagination() {
	e.cursor = nil
	e.hasMore = false
}

// appendEntries grows the accumulated set, dropping entries whose ID
// was already seen. A row can repeat across a page boundary when its
// ordering key changed between fetches; keeping the first occurrence
// preserves the order the user has already scrolled through.
func (e *Engine) appendEntries(entries []model.Entry) {
	for _, entry := range entries {
		if _, dup := e.seen[entry.ID]; dup {
			e.logger.Debug("dropping duplicate entry at page boundary", "id", entry.ID)
			continue
		}
		e.seen[entry.ID] = struct{}{}
		e.entries = append(e.entries, entry)
	}
}

func toPage(res store.Result) model.Page {
	page := model.Page{Entries: res.Entries, HasMore: res.HasMore}
	if res.HasMore {
		page.Cursor = res.NextCursor
	}
	return page
}

// firstPageKey is the cache key for filter key k's first page.
func firstPageKey(k string) string {
	return pageFamilyPrefix(k) + "0"
}

// pageFamilyPrefix covers every cached page for filter key k, and
// only that filter's: page numbers come after the filter so that one
// family can be invalidated without touching the others.
func pageFamilyPrefix(k string) string {
	return cachePrefix + "|" + k + "|"
}
