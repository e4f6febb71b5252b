// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package codetable loads the ordered table of location code patterns hostname
labels are matched against.

Each table entry associates a location identifier with a regular expression.
The expression's named capturing groups must be named after code types, such
as "iata" or "locode", so that a match also tells which kind of code was
found:

	[
	  {"location_id": "4711", "pattern": "^(?P<iata>fra)$|^(?P<locode>defra)$"}
	]

Building these tables is somebody else's business; hlocate only loads them.
*/
package codetable

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/siemens/hlocate/types"
)

// Entry is a single code table entry.
type Entry struct {
	LocationID string
	Pattern    *regexp.Regexp
	groups     []groupType // capturing groups with code types, in pattern order.
}

type groupType struct {
	subexp int // index of the capturing group.
	typ    types.CodeType
}

// Table is an ordered sequence of code table entries, where earlier entries
// take precedence over later ones.
type Table []*Entry

// NewEntry returns a new code table entry for the specified location and
// pattern. All named capturing groups in the pattern must be code type names.
func NewEntry(locationID string, pattern string) (*Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for location %q: %w", locationID, err)
	}
	entry := &Entry{
		LocationID: locationID,
		Pattern:    re,
	}
	for subexp, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		t, err := types.ParseCodeType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for location %q: %w", locationID, err)
		}
		entry.groups = append(entry.groups, groupType{subexp: subexp, typ: t})
	}
	if len(entry.groups) == 0 {
		return nil, fmt.Errorf("pattern for location %q lacks named code groups", locationID)
	}
	return entry, nil
}

// MustEntry is like NewEntry, but panics on invalid patterns.
func MustEntry(locationID string, pattern string) *Entry {
	entry, err := NewEntry(locationID, pattern)
	if err != nil {
		panic(err)
	}
	return entry
}

// New returns a new table consisting of the specified entries, in order.
func New(entries ...*Entry) Table {
	return Table(entries)
}

// Match searches s for this entry's pattern. It returns the code type of the
// first named capturing group (in pattern order) participating in the match.
// A match without any participating named group doesn't count.
func (e *Entry) Match(s string) (types.CodeType, bool) {
	loc := e.Pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return 0, false
	}
	for _, g := range e.groups {
		if loc[2*g.subexp] >= 0 {
			return g.typ, true
		}
	}
	return 0, false
}

// Lookup returns the first entry of the table matching s, together with the
// code type matched.
func (t Table) Lookup(s string) (*Entry, types.CodeType, bool) {
	for _, entry := range t {
		if typ, ok := entry.Match(s); ok {
			return entry, typ, true
		}
	}
	return nil, 0, false
}

type jsonEntry struct {
	LocationID string `json:"location_id"`
	Pattern    string `json:"pattern"`
}

// Load reads a code table from a JSON file consisting of an array of
// {"location_id", "pattern"} objects. The order of the array is the order of
// precedence.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load code table: %w", err)
	}
	var jentries []jsonEntry
	if err := json.Unmarshal(data, &jentries); err != nil {
		return nil, fmt.Errorf("cannot load code table from %s: %w", path, err)
	}
	table := make(Table, 0, len(jentries))
	for idx, je := range jentries {
		entry, err := NewEntry(je.LocationID, je.Pattern)
		if err != nil {
			return nil, fmt.Errorf("code table %s, entry #%d: %w", path, idx, err)
		}
		table = append(table, entry)
	}
	return table, nil
}
