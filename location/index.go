// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package location

import (
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/siemens/hlocate/geo"
)

// cellLevel of the index buckets; level 6 cells have edges of roughly 100km.
const cellLevel = 6

// Index is a read-only spatial index of locations.
type Index struct {
	cells map[s2.CellID][]*Location
	size  int
}

// Nearby is a location found within some radius, together with its exact
// distance in km.
type Nearby struct {
	*Location
	DistanceKm float64
}

// NewIndex returns an index over the specified locations.
func NewIndex(db DB) *Index {
	idx := &Index{cells: map[s2.CellID][]*Location{}}
	for _, loc := range db {
		if loc.Point.Validate() != nil {
			continue
		}
		cell := s2.CellIDFromLatLng(loc.LatLng()).Parent(cellLevel)
		idx.cells[cell] = append(idx.cells[cell], loc)
		idx.size++
	}
	return idx
}

// Len returns the number of indexed locations.
func (idx *Index) Len() int { return idx.size }

// Within returns the indexed locations within radiusKm of center, sorted by
// their distance (and then ID for ties).
func (idx *Index) Within(center geo.Point, radiusKm float64) ([]Nearby, error) {
	if _, err := geo.IsInRadius(center, center, radiusKm); err != nil {
		return nil, err
	}
	// Slightly enlarge the covered cap, as the radius test is only an
	// approximation that may be a tad more generous than the exact distance.
	capAngle := s1.Angle(radiusKm*1.05/geo.EarthRadiusKm) + 1e-9
	if capAngle > math.Pi {
		capAngle = math.Pi
	}
	region := s2.CapFromCenterAngle(s2.PointFromLatLng(center.LatLng()), capAngle)
	coverer := &s2.RegionCoverer{MinLevel: cellLevel, MaxLevel: cellLevel, MaxCells: 64}
	var found []Nearby
	seen := map[s2.CellID]bool{}
	for _, cell := range coverer.Covering(region) {
		for _, c := range cellsAtLevel(cell) {
			if seen[c] {
				continue
			}
			seen[c] = true
			for _, loc := range idx.cells[c] {
				if !center.Near(loc.Point, radiusKm) {
					continue
				}
				dist, _ := geo.Haversine(center, loc.Point)
				found = append(found, Nearby{Location: loc, DistanceKm: dist})
			}
		}
	}
	sort.Slice(found, func(a, b int) bool {
		if found[a].DistanceKm != found[b].DistanceKm {
			return found[a].DistanceKm < found[b].DistanceKm
		}
		return found[a].ID < found[b].ID
	})
	return found, nil
}

// cellsAtLevel maps a covering cell onto the cells of the index level.
func cellsAtLevel(cell s2.CellID) []s2.CellID {
	switch lvl := cell.Level(); {
	case lvl == cellLevel:
		return []s2.CellID{cell}
	case lvl > cellLevel:
		return []s2.CellID{cell.Parent(cellLevel)}
	}
	var cells []s2.CellID
	for c := cell.ChildBeginAtLevel(cellLevel); c != cell.ChildEndAtLevel(cellLevel); c = c.Next() {
		cells = append(cells, c)
	}
	return cells
}
