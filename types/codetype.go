// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"fmt"
)

// CodeType indicates the category of a geographic code found in a hostname
// label, such as an IATA airport code or a UN/LOCODE place code.
type CodeType int

// The categories of geographic codes. Their textual names are also the names
// of the capturing groups in code table patterns.
const (
	IATA   CodeType = iota // IATA airport code, such as "jfk".
	ICAO                   // ICAO airport code, such as "kjfk".
	FAA                    // FAA location identifier.
	CLLI                   // CLLI (exchange facility) code, such as "nycmny".
	ALT                    // match against an alternate location name.
	LOCODE                 // UN/LOCODE place code, such as "usnyc".
)

// CodeTypes lists all code types in their canonical order.
var CodeTypes = [...]CodeType{IATA, ICAO, FAA, CLLI, ALT, LOCODE}

var codeTypeNames = [...]string{"iata", "icao", "faa", "clli", "alt", "locode"}

// String returns the clear-text representation of a CodeType value.
func (t CodeType) String() string {
	if t.valid() {
		return codeTypeNames[t]
	}
	return fmt.Sprintf("CodeType(%d)", int(t))
}

func (t CodeType) valid() bool { return t >= IATA && t <= LOCODE }

// ParseCodeType returns the CodeType for the given textual name, such as
// "iata" or "locode".
func ParseCodeType(name string) (CodeType, error) {
	for idx, n := range codeTypeNames {
		if n == name {
			return CodeType(idx), nil
		}
	}
	return 0, fmt.Errorf("unknown location code type %q", name)
}

// MarshalJSON encodes a CodeType as its textual name.
func (t CodeType) MarshalJSON() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", t)
	}
	return json.Marshal(codeTypeNames[t])
}

// UnmarshalJSON decodes a CodeType from its textual name.
func (t *CodeType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	ct, err := ParseCodeType(name)
	if err != nil {
		return err
	}
	*t = ct
	return nil
}

// TypeCounts counts matches per code type.
type TypeCounts [len(codeTypeNames)]int

// Inc increments the counter for the specified code type.
func (c *TypeCounts) Inc(t CodeType) { c[t]++ }

// Add adds all counters of other to these counters.
func (c *TypeCounts) Add(other TypeCounts) {
	for idx := range c {
		c[idx] += other[idx]
	}
}

// Get returns the counter for the specified code type.
func (c TypeCounts) Get(t CodeType) int { return c[t] }

// Total returns the sum over all counters.
func (c TypeCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MarshalJSON encodes the counters as an object keyed by code type name.
func (c TypeCounts) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(c))
	for idx, n := range c {
		m[codeTypeNames[idx]] = n
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes counters from an object keyed by code type name;
// missing code types count zero.
func (c *TypeCounts) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = TypeCounts{}
	for name, n := range m {
		ct, err := ParseCodeType(name)
		if err != nil {
			return err
		}
		c[ct] = n
	}
	return nil
}
