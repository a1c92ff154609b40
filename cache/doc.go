// Package cache provides a process-lifetime key/value cache with
// per-entry TTL and size-bounded eviction.
//
// Eviction is by insertion time, not access time: a Get does not
// refresh an entry's age, so the entry evicted at capacity is always
// the least-recently-inserted one. This is a deliberate design choice
// for the page-cache workload — first pages are written once and read
// many times within their TTL, so access-order bookkeeping buys
// nothing — and it keeps eviction order predictable for tests.
//
// Expiry is lazy: an expired entry is logically absent from the moment
// its TTL elapses, but it is physically removed only when a Get
// observes it (or when eviction reaches it).
//
// The cache never fails: a broken or expired read is indistinguishable
// from a miss.
package cache
