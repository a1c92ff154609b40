// Package snapshot persists an accumulated catalog view so it can be
// served again without a network round trip (offline tours, cold
// starts).
//
// The on-disk format is self-describing:
//
//	[magic 4B][version 1B][compression 1B][payload...]
//
// The payload is the JSON encoding of the entry slice, optionally
// compressed with zstd or lz4. Changing the payload encoding is a
// breaking-change boundary: bump the version byte.
package snapshot
