package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/placewalk/placewalk/model"
)

// Memory is an in-memory Store with keyset cursors.
//
// It serves pages in strictly descending UpdatedAt order (ID breaks
// ties, descending, so the ordering is total) and mints cursors bound
// to the filter of the query that produced them. Intended for tests
// and examples.
type Memory struct {
	mu      sync.RWMutex
	entries []model.Entry
}

// memoryToken is the decoded form of a Memory cursor token.
type memoryToken struct {
	UpdatedAt int64  `json:"u"`
	ID        string `json:"id"`
}

// NewMemory creates a Memory store seeded with the given entries.
func NewMemory(entries ...model.Entry) *Memory {
	m := &Memory{}
	m.Put(entries...)
	return m
}

// Put inserts or replaces entries by ID. A replaced entry is swapped
// wholesale; there is no partial merge.
func (m *Memory) Put(entries ...model.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		replaced := false
		for i := range m.entries {
			if m.entries[i].ID == e.ID {
				m.entries[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			m.entries = append(m.entries, e)
		}
	}

	sort.Slice(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
}

// FetchPage implements Store.
func (m *Memory) FetchPage(_ context.Context, q PageQuery) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filterKey := q.Filter.Key()
	if q.Cursor != nil && q.Cursor.Filter != filterKey {
		return Result{}, &ErrCursorMismatch{Got: q.Cursor.Filter, Want: filterKey}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var after *memoryToken
	if q.Cursor != nil {
		tok, err := decodeMemoryToken(q.Cursor.Token)
		if err != nil {
			return Result{}, err
		}
		after = &tok
	}

	matched := make([]model.Entry, 0, limit+1)
	for _, e := range m.entries {
		if !matchesFilter(e, q.Filter) {
			continue
		}
		if after != nil && !startsAfter(e, *after) {
			continue
		}
		matched = append(matched, e)
		// One extra row decides HasMore without a second scan.
		if len(matched) > limit {
			break
		}
	}

	res := Result{}
	if len(matched) > limit {
		res.Entries = matched[:limit]
		res.HasMore = true
		last := res.Entries[len(res.Entries)-1]
		res.NextCursor = &model.Cursor{
			Token:  encodeMemoryToken(memoryToken{UpdatedAt: last.UpdatedAt.UnixNano(), ID: last.ID}),
			Filter: filterKey,
		}
	} else {
		res.Entries = matched
	}

	return res, nil
}

// FetchOne implements Store.
func (m *Memory) FetchOne(_ context.Context, id string) (model.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// startsAfter reports whether e sorts strictly after the row the
// token points at, under the store's (UpdatedAt desc, ID desc) order.
func startsAfter(e model.Entry, tok memoryToken) bool {
	u := e.UpdatedAt.UnixNano()
	if u != tok.UpdatedAt {
		return u < tok.UpdatedAt
	}
	return e.ID < tok.ID
}

func matchesFilter(e model.Entry, f Filter) bool {
	for k, want := range f {
		got, ok := e.Facets[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func encodeMemoryToken(tok memoryToken) string {
	b, _ := json.Marshal(tok)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeMemoryToken(s string) (memoryToken, error) {
	var tok memoryToken
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return tok, fmt.Errorf("malformed cursor token: %w", err)
	}
	if err := json.Unmarshal(b, &tok); err != nil {
		return tok, fmt.Errorf("malformed cursor token: %w", err)
	}
	return tok, nil
}
