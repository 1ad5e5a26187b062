// Package geo provides geographic utility functions for geofenced QR activation.
//
// All distance calculations use the Haversine formula on a spherical Earth.
package geo

import (
	"math"

	"github.com/shiva/campusq/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusM is the mean radius of Earth in meters.
	EarthRadiusM = 6_371_000.0

	// DefaultGeofenceM is how close a user must be to a facility to activate a pickup QR.
	DefaultGeofenceM = 50.0
)

// ─── Distance ───────────────────────────────────────────────

// DistanceMeters returns the great-circle distance between two points in meters.
//
// Complexity: O(1)
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dPhi := degToRad(lat2 - lat1)
	dLambda := degToRad(lng2 - lng1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	return 2 * EarthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// HaversineM returns the distance between two coordinates in meters.
func HaversineM(a, b model.Coordinates) float64 {
	return DistanceMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Within reports whether b lies within radiusM meters of a, and the distance.
// The boundary is inclusive.
func Within(a, b model.Coordinates, radiusM float64) (float64, bool) {
	d := HaversineM(a, b)
	return d, d <= radiusM
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
