// Package model defines core types shared across placewalk:
// catalog entries, pages and pagination cursors.
//
// # Data Types
//
//   - Entry: one catalog record (a place), immutable once fetched
//   - Page: one fetched slice of the catalog plus its continuation
//   - Cursor: opaque continuation token bound to the filter it was
//     minted under
//
// A later fetch of an Entry with the same ID replaces the previous
// value wholesale; there is no partial merge.
package model
