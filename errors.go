package placewalk

import (
	"errors"

	"github.com/placewalk/placewalk/store"
)

var (
	// ErrNilStore is returned when a Catalog is created without a store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNoCoordinates is returned when a proximity watch targets an
	// entry that carries no coordinates.
	ErrNoCoordinates = errors.New("entry has no coordinates")

	// ErrNoImageResolver is returned when image URLs are requested but
	// no image store was configured.
	ErrNoImageResolver = errors.New("no image resolver configured")

	// ErrNotFound is returned when an entry does not exist.
	// Aliased from the store package so callers only import placewalk.
	ErrNotFound = store.ErrNotFound
)
