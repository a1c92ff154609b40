// Package pager wraps the remote store's cursor API in a page-at-a-
// time engine: it serves the first page through the cache, walks
// subsequent pages with the store's cursor, and accumulates every
// fetched entry into one growing, ordered result set.
//
// Failure degrades, it never propagates: a store error or timeout
// surfaces to the caller as an empty terminal page ("no more data"),
// and pagination for the session stays stopped until Refresh.
//
// The engine is a single-writer structure. It does not serialize
// concurrent calls for the same filter — two racing FirstPage calls
// would both hit the store and the last cache write would win.
// Callers are expected to serialize requests per filter (a simple
// request-in-flight flag suffices).
package pager
