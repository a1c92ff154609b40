package filter

import (
	"math"
	"sort"
	"strings"

	"github.com/placewalk/placewalk/geo"
	"github.com/placewalk/placewalk/model"
)

// sortEntries orders entries in place per c.SortBy. All orders are
// stable so that equal keys keep their relative input order.
func sortEntries(entries []model.Entry, c Criteria) {
	switch c.SortBy {
	case SortByName:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
		})

	case SortByYear:
		sort.SliceStable(entries, func(i, j int) bool {
			return yearKey(&entries[i]) < yearKey(&entries[j])
		})

	case SortByDistance:
		if c.Near == nil {
			// No center to measure from: every key is equal and the
			// stable sort leaves the input order untouched.
			return
		}
		center := c.Near.Center
		sort.SliceStable(entries, func(i, j int) bool {
			return distanceKey(&entries[i], center) < distanceKey(&entries[j], center)
		})

	case SortByCategory:
		rank := make(map[string]int, len(c.CategoryPriority))
		for i, v := range c.CategoryPriority {
			rank[v] = i
		}
		last := len(c.CategoryPriority)
		key := func(e *model.Entry) int {
			v, ok := e.Facets[c.CategoryFacet]
			if !ok {
				return last
			}
			r, listed := rank[v]
			if !listed {
				return last
			}
			return r
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return key(&entries[i]) < key(&entries[j])
		})
	}
}

// yearKey maps a missing founding year after every real one.
func yearKey(e *model.Entry) int {
	if e.FoundedYear == nil {
		return math.MaxInt
	}
	return *e.FoundedYear
}

// distanceKey maps entries without coordinates after every located one.
func distanceKey(e *model.Entry, center geo.Point) float64 {
	if e.Coordinate == nil {
		return math.Inf(1)
	}
	return geo.Haversine(center, *e.Coordinate)
}
