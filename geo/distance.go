// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by all distance primitives.
const EarthRadiusKm = 6371.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance between p1 and p2 in
// kilometers, on a sphere of radius EarthRadiusKm.
func Haversine(p1, p2 Point) (float64, error) {
	if err := validatePair(p1, p2); err != nil {
		return 0, err
	}
	return float64(p1.LatLng().Distance(p2.LatLng())) * EarthRadiusKm, nil
}

// IsInRadius reports whether p2 lies within radiusKm of p1, using the
// equirectangular approximation. See the package documentation for its
// limits.
func IsInRadius(p1, p2 Point, radiusKm float64) (bool, error) {
	if err := validatePair(p1, p2); err != nil {
		return false, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return false, &InputError{Field: "radius", Value: fmt.Sprint(radiusKm), msg: "must be a non-negative number"}
	}
	lat1, lat2 := radians(p1.Lat), radians(p2.Lat)
	x := (radians(p2.Lon) - radians(p1.Lon)) * math.Cos((lat1+lat2)/2)
	y := lat2 - lat1
	r := radiusKm / EarthRadiusKm
	return x*x+y*y <= r*r, nil
}

func validatePair(p1, p2 Point) error {
	if err := p1.Validate(); err != nil {
		return err
	}
	return p2.Validate()
}
