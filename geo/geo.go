package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371008.8

// Point is a geographic coordinate in decimal degrees (WGS 84).
type Point struct {
	Lat float64
	Lon float64
}

// String returns a compact "lat,lon" representation.
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Valid reports whether the point lies within the WGS 84 coordinate range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	// Clamp against floating point drift before Asin.
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Point) float64 {
	return Haversine(a, b) / 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
