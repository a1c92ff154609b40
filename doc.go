// Package placewalk provides a client-side access layer for a places
// catalog, built for location-aware list UIs with production-ready
// features including:
//
//   - Cursor pagination with first-page caching and graceful
//     degradation on fetch failures
//   - Deterministic in-memory filtering and sorting (text, facets,
//     year ranges, geospatial radius) backed by Roaring Bitmaps
//   - Geofenced proximity detection with exactly-once arrival
//     callbacks
//   - Pluggable stores: in-memory, DynamoDB
//   - Image asset resolution via S3 or MinIO presigned URLs
//   - Offline snapshots with zstd/lz4 compression
//
// # Quick Start
//
//	ctx := context.Background()
//	catalog, _ := placewalk.New(store.NewMemory())
//
//	page := catalog.FirstPage(ctx, store.Filter{"category": "museum"})
//	for catalog.HasMore() {
//	    catalog.LoadMore(ctx)
//	}
//
//	visible := catalog.Visible(ctx, filter.Criteria{
//	    Near:   &filter.Proximity{Center: here, RadiusKm: 5},
//	    SortBy: filter.SortByDistance,
//	})
//
// Watch a place and get a single callback when the user arrives:
//
//	detector, _ := catalog.Watch(ctx, stream, louvre.Coordinate,
//	    func(pos proximity.Position, meters float64) {
//	        // arrived
//	    }, nil)
//
// # Concurrency
//
// A Catalog is safe for concurrent use. The underlying pagination
// engine is single-owner; the Catalog serializes access to it.
package placewalk
