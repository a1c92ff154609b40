package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/placewalk/placewalk/model"
)

// ErrNotFound is returned by FetchOne when no entry has the given ID.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("entry not found")

// ErrCursorMismatch indicates a cursor presented against a filter it
// was not minted under. Cursors are never silently accepted across
// filters.
type ErrCursorMismatch struct {
	Got  string
	Want string
}

func (e *ErrCursorMismatch) Error() string {
	return fmt.Sprintf("cursor minted under filter %q used with filter %q", e.Got, e.Want)
}

// Filter is a field-equality set applied server-side by FetchPage.
// An empty filter matches every entry.
type Filter map[string]string

// Key returns the canonical representation of the filter: "k=v" pairs
// sorted by key and joined with "&". The empty filter's key is "".
//
// Cursor binding and cache keys are both derived from this value, so
// two filters with equal contents always share cursors and cache
// entries.
func (f Filter) Key() string {
	if len(f) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// PageQuery describes one FetchPage call.
//
// A nil Cursor requests the first page. Limit is the page size; the
// store returns at most Limit entries in strictly descending
// UpdatedAt order, starting after the row the cursor points at.
type PageQuery struct {
	Filter Filter
	Cursor *model.Cursor
	Limit  int
}

// Result is the outcome of one FetchPage call.
//
// NextCursor is nil exactly when HasMore is false.
type Result struct {
	Entries    []model.Entry
	NextCursor *model.Cursor
	HasMore    bool
}

// Store is the remote document store consumed by the pagination
// engine.
type Store interface {
	// FetchPage returns one page of entries matching q.Filter in
	// strictly descending UpdatedAt order. A cursor minted under a
	// different filter must be rejected with ErrCursorMismatch.
	FetchPage(ctx context.Context, q PageQuery) (Result, error)

	// FetchOne returns the entry with the given ID, or an error
	// satisfying errors.Is(err, ErrNotFound).
	FetchOne(ctx context.Context, id string) (model.Entry, error)
}
