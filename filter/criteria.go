package filter

import (
	"fmt"

	"github.com/placewalk/placewalk/geo"
)

// SortOrder selects the ordering applied after filtering.
type SortOrder int

const (
	// SortByName orders alphabetically by name (case-insensitive).
	SortByName SortOrder = iota
	// SortByYear orders by founding year ascending; entries without
	// a year sort last.
	SortByYear
	// SortByDistance orders by distance to Near.Center ascending;
	// entries without coordinates sort last.
	SortByDistance
	// SortByCategory orders by the position of one facet's value in
	// CategoryPriority; values not listed sort last.
	SortByCategory
)

func (s SortOrder) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByYear:
		return "year"
	case SortByDistance:
		return "distance"
	case SortByCategory:
		return "category"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range, both ends
// inclusive.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Proximity is a radius constraint around a center point.
type Proximity struct {
	Center   geo.Point
	RadiusKm float64
}

// Criteria is pure data describing one derived view.
//
// Zero-value fields impose no constraint: an empty Query matches
// everything, an empty or absent facet set leaves that facet
// unconstrained, and nil YearRange/Near disable those predicates.
type Criteria struct {
	// Query is matched case-insensitively as a substring of the
	// entry's name, alternate name and locality; any field matching
	// qualifies the entry.
	Query string

	// Facets maps a facet name to the set of accepted values.
	// Facets AND together; within one facet the values OR.
	Facets map[string][]string

	// YearRange restricts FoundedYear, inclusive on both ends.
	// Entries without a year are excluded while a range is active.
	YearRange *Range

	// Near restricts entries to a radius around a center. Entries
	// without coordinates are excluded while it is active, never
	// silently included.
	Near *Proximity

	SortBy SortOrder

	// CategoryFacet names the facet consulted by SortByCategory.
	CategoryFacet string
	// CategoryPriority is the fixed ordering of that facet's values.
	CategoryPriority []string
}
