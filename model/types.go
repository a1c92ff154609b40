package model

import (
	"time"

	"github.com/placewalk/placewalk/geo"
)

// Entry is one catalog record.
//
// The ID is stable and unique; UpdatedAt is the ordering key for
// pagination (pages are served in strictly descending UpdatedAt
// order). Coordinate and FoundedYear are optional: a nil value means
// the record simply does not carry that attribute, and filters that
// need it exclude the entry rather than guessing.
type Entry struct {
	ID        string
	Name      string
	AltName   string
	Locality  string
	UpdatedAt time.Time

	// Coordinate is nil for entries without a known position.
	Coordinate *geo.Point

	// FoundedYear is nil when unknown.
	FoundedYear *int

	// Facets holds one categorical value per facet name,
	// e.g. {"style": "gothic", "kind": "basilica"}.
	Facets map[string]string

	// ImageKey references the entry's image in the image store.
	// Empty when the entry has no image.
	ImageKey string
}

// Facet returns the entry's value for the named facet.
// ok is false when the entry does not carry the facet.
func (e *Entry) Facet(name string) (string, bool) {
	v, ok := e.Facets[name]
	return v, ok
}

// Cursor is an opaque continuation token.
//
// A cursor is bound to the filter it was minted under: Filter holds
// that filter's canonical key, and consumers must reject a cursor
// presented against a different filter rather than silently accept it.
type Cursor struct {
	Token  string
	Filter string
}

// Page is one fetched slice of the catalog.
//
// Invariants: HasMore == false implies Cursor == nil, and a page
// shorter than the requested size is terminal (the store never
// short-pages with more data pending).
type Page struct {
	Entries []Entry
	Cursor  *Cursor
	HasMore bool
}

// Empty reports whether the page carries no entries.
func (p Page) Empty() bool {
	return len(p.Entries) == 0
}
