// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package location

import (
	"github.com/siemens/hlocate/geo"
	"github.com/siemens/hlocate/types"
)

// Candidate is a location a domain might be located at, based on a code match
// in one of its labels.
type Candidate struct {
	*Location
	CodeType types.CodeType
	Label    string // the label the code was found in.
}

// Resolve returns the candidate locations for the code matches of a domain,
// in label order. Matches referring to unknown locations are skipped, as are
// repeated matches of the same location and code type.
func Resolve(d *types.Domain, db DB) []Candidate {
	type key struct {
		id string
		t  types.CodeType
	}
	seen := map[key]bool{}
	var candidates []Candidate
	for _, label := range d.Labels {
		for _, match := range label.Matches {
			loc, ok := db[match.LocationID]
			if !ok {
				continue
			}
			k := key{id: match.LocationID, t: match.CodeType}
			if seen[k] {
				continue
			}
			seen[k] = true
			candidates = append(candidates, Candidate{
				Location: loc,
				CodeType: match.CodeType,
				Label:    label.Label,
			})
		}
	}
	return candidates
}

// FilterNear returns only those candidates within radiusKm of center.
func FilterNear(candidates []Candidate, center geo.Point, radiusKm float64) ([]Candidate, error) {
	var near []Candidate
	for _, c := range candidates {
		ok, err := geo.IsInRadius(center, c.Point, radiusKm)
		if err != nil {
			return nil, err
		}
		if ok {
			near = append(near, c)
		}
	}
	return near, nil
}
