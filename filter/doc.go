// Package filter derives an ordered, filtered view from a snapshot of
// catalog entries.
//
// Apply is a total, deterministic function: the same criteria applied
// to the same entry slice always produces the same ordered output. It
// never mutates its input. Filters are intersected (every active
// predicate must match) and are evaluated against every entry, so the
// order in which predicates run is not observable in the result.
// Sorting happens after filtering and is stable.
//
// Candidate selection runs on roaring bitmaps keyed by entry position:
// facet constraints intersect posting bitmaps, scan predicates (text,
// year range, radius) intersect on top, and ascending-position
// iteration preserves the input order of the surviving entries.
package filter
