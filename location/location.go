// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package location

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/siemens/hlocate/geo"
)

// AirportInfo lists the airport codes of a location.
type AirportInfo struct {
	IATACodes []string `json:"iata_codes"`
	ICAOCodes []string `json:"icao_codes"`
	FAACodes  []string `json:"faa_codes"`
}

// LocodeInfo lists the UN/LOCODE codes of a location.
type LocodeInfo struct {
	PlaceCodes       []string `json:"place_codes"`
	SubdivisionCodes []string `json:"subdivision_codes"`
}

// Location is a place code matches can refer to.
type Location struct {
	ID string `json:"id"`
	geo.Point
	CityName       string       `json:"city_name,omitempty"`
	State          string       `json:"state,omitempty"`
	StateCode      string       `json:"state_code,omitempty"`
	Population     int          `json:"population,omitempty"`
	Airport        *AirportInfo `json:"airport_info,omitempty"`
	Locode         *LocodeInfo  `json:"locode,omitempty"`
	CLLI           []string     `json:"clli,omitempty"`
	AlternateNames []string     `json:"alternate_names,omitempty"`
}

// AirportCoder is implemented by locations that are known to have airport
// codes.
type AirportCoder interface {
	AirportInfo() (AirportInfo, bool)
}

// LocodeCoder is implemented by locations that are known to have UN/LOCODE
// codes.
type LocodeCoder interface {
	LocodeInfo() (LocodeInfo, bool)
}

var (
	_ AirportCoder = (*Location)(nil)
	_ LocodeCoder  = (*Location)(nil)
)

// AirportInfo returns (a copy of) the airport codes, if any.
func (l *Location) AirportInfo() (AirportInfo, bool) {
	if l.Airport == nil {
		return AirportInfo{}, false
	}
	return *l.Airport, true
}

// LocodeInfo returns (a copy of) the UN/LOCODE codes, if any.
func (l *Location) LocodeInfo() (LocodeInfo, bool) {
	if l.Locode == nil {
		return LocodeInfo{}, false
	}
	return *l.Locode, true
}

// DB maps location IDs to their locations.
type DB map[string]*Location

// Load reads a JSON array of locations and returns them indexed by ID. Loading
// fails on duplicate IDs and invalid coordinates.
func Load(path string) (DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load locations: %w", err)
	}
	defer f.Close()
	var locs []*Location
	if err := json.NewDecoder(f).Decode(&locs); err != nil {
		return nil, fmt.Errorf("cannot load locations from %s: %w", path, err)
	}
	db := make(DB, len(locs))
	for idx, loc := range locs {
		if loc == nil || loc.ID == "" {
			return nil, fmt.Errorf("location #%d in %s lacks an ID", idx, path)
		}
		if err := loc.Point.Validate(); err != nil {
			return nil, fmt.Errorf("location %q in %s: %w", loc.ID, path, err)
		}
		if _, ok := db[loc.ID]; ok {
			return nil, fmt.Errorf("duplicate location %q in %s", loc.ID, path)
		}
		db[loc.ID] = loc
	}
	return db, nil
}
