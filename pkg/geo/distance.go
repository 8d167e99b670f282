// Package geo provides great-circle distance calculations on WGS84
// latitude/longitude coordinates.
package geo

import (
	"github.com/golang/geo/s2"
)

// Mean Earth radius in kilometres.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between
// two (latitude, longitude) coordinates given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusKm
}
