// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// InputError reports coordinates or radii unfit for distance calculations.
type InputError struct {
	Field string // "lat", "lon", or "radius"
	Value string // offending value in textual form
	msg   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("geo: invalid %s %s: %s", e.Field, e.Value, e.msg)
}

// ParsePoint parses textual latitude and longitude values into a validated
// Point.
func ParsePoint(lat, lon string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, &InputError{Field: "lat", Value: strconv.Quote(lat), msg: "not a number"}
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Point{}, &InputError{Field: "lon", Value: strconv.Quote(lon), msg: "not a number"}
	}
	p := Point{Lat: la, Lon: lo}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// ParseLatLon parses a "lat,lon" pair, such as "52.52,13.405".
func ParseLatLon(s string) (Point, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, &InputError{Field: "lat", Value: strconv.Quote(s), msg: `expected "lat,lon"`}
	}
	return ParsePoint(lat, lon)
}

// Validate returns an *InputError if the point is not finite or out of the
// ranges −90≤lat≤90 and −180≤lon≤180.
func (p Point) Validate() error {
	if err := checkCoord("lat", p.Lat, 90); err != nil {
		return err
	}
	return checkCoord("lon", p.Lon, 180)
}

func checkCoord(field string, v float64, limit float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &InputError{Field: field, Value: fmt.Sprint(v), msg: "not a finite number"}
	case v < -limit || v > limit:
		return &InputError{Field: field, Value: fmt.Sprint(v),
			msg: fmt.Sprintf("out of range [%g..%g]", -limit, limit)}
	}
	return nil
}

// LatLng returns the s2 representation of this point.
func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// Near returns true if other lies within the specified radius (in km) as
// determined by IsInRadius. Invalid input never is near.
func (p Point) Near(other Point, radiusKm float64) bool {
	near, err := IsInRadius(p, other, radiusKm)
	return err == nil && near
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.Lat, p.Lon)
}
