// Package geo provides geographic coordinate types and great-circle
// distance calculations.
//
// All distances use the haversine formula on a spherical earth model
// (mean radius 6371.0088 km), which is accurate to well under 0.5% for
// the short ranges this library cares about (radius filters and
// geofence thresholds).
//
// # Usage
//
//	meters := geo.Haversine(a, b)
//	km := geo.HaversineKm(a, b)
package geo
