// Package geo implements great-circle distance on a spherical Earth.
package geo

import (
	"errors"
	"math"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const (
	EarthRadiusKm = 6371.0
	KmPerMile     = 1.609344
)

var ErrInvalidCoordinate = errors.New("coordinate is not finite")

// Finite reports whether both components of c are finite numbers.
func Finite(c domain.Coordinate) bool {
	return !math.IsNaN(c.Latitude) && !math.IsInf(c.Latitude, 0) &&
		!math.IsNaN(c.Longitude) && !math.IsInf(c.Longitude, 0)
}

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Coordinate) (float64, error) {
	if !Finite(a) || !Finite(b) {
		return 0, ErrInvalidCoordinate
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h just past 1 for near-antipodal points.
	h = min(max(h, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}
