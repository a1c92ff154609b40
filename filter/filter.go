package filter

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/placewalk/placewalk/geo"
	"github.com/placewalk/placewalk/model"
)

// Apply returns the entries matching every active predicate in c,
// ordered by c.SortBy. The input slice is never mutated; entries equal
// under the sort comparator keep their relative input order.
func Apply(entries []model.Entry, c Criteria) []model.Entry {
	if len(entries) == 0 {
		return nil
	}

	sel := roaring.New()
	sel.AddRange(0, uint64(len(entries)))

	for facet, allowed := range c.Facets {
		if len(allowed) == 0 {
			// An empty selection means "no constraint", not
			// "must be empty".
			continue
		}
		sel.And(facetPostings(entries, facet, allowed))
	}

	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		sel.And(scanPostings(entries, func(e *model.Entry) bool {
			return matchesText(e, q)
		}))
	}

	if c.YearRange != nil {
		r := *c.YearRange
		sel.And(scanPostings(entries, func(e *model.Entry) bool {
			return e.FoundedYear != nil && r.Contains(*e.FoundedYear)
		}))
	}

	if c.Near != nil {
		n := *c.Near
		sel.And(scanPostings(entries, func(e *model.Entry) bool {
			return e.Coordinate != nil && geo.HaversineKm(n.Center, *e.Coordinate) <= n.RadiusKm
		}))
	}

	// Ascending-position iteration keeps the survivors in input order,
	// which is what makes the stable sort below meaningful.
	out := make([]model.Entry, 0, sel.GetCardinality())
	it := sel.Iterator()
	for it.HasNext() {
		out = append(out, entries[it.Next()])
	}

	sortEntries(out, c)
	return out
}

// facetPostings builds the bitmap of positions whose facet value is in
// the allowed set.
func facetPostings(entries []model.Entry, facet string, allowed []string) *roaring.Bitmap {
	accept := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		accept[v] = struct{}{}
	}

	post := roaring.New()
	for i := range entries {
		if v, ok := entries[i].Facets[facet]; ok {
			if _, hit := accept[v]; hit {
				post.Add(uint32(i))
			}
		}
	}
	return post
}

// scanPostings builds the bitmap of positions satisfying pred.
func scanPostings(entries []model.Entry, pred func(*model.Entry) bool) *roaring.Bitmap {
	post := roaring.New()
	for i := range entries {
		if pred(&entries[i]) {
			post.Add(uint32(i))
		}
	}
	return post
}

// matchesText reports whether any text field of e contains the
// already-lowercased query.
func matchesText(e *model.Entry, query string) bool {
	for _, field := range []string{e.Name, e.AltName, e.Locality} {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
