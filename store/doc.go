// Package store defines the remote document store interface consumed
// by the pagination engine, plus a deterministic in-memory
// implementation used by tests and examples.
//
// The store surface is deliberately small: cursor-based range reads in
// descending update order (FetchPage) and point lookups (FetchOne).
// Everything else — serialization, indexing, write paths — is the
// remote store's concern.
package store
