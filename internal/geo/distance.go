// Package geo provides great-circle distance computation used by the
// location-aware event ranking.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees, using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	deltaPhi := radians(lat2 - lat1)
	deltaLambda := radians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
