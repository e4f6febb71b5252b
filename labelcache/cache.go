// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package labelcache

import (
	"strings"

	"github.com/siemens/hlocate/types"
)

// Entry is the cached result for a popular label. A nil Matches slice means
// that the matches haven't been computed yet; an empty, but non-nil, slice
// means that the label was computed and didn't match.
type Entry struct {
	Matches []types.CodeMatch `json:"matches"`
	Counts  types.TypeCounts  `json:"counts"`
}

// Computed returns true if the entry carries computed matches.
func (e Entry) Computed() bool { return e.Matches != nil }

// clone returns a copy of the entry not sharing its matches.
func (e Entry) clone() Entry {
	if e.Matches != nil {
		e.Matches = append(make([]types.CodeMatch, 0, len(e.Matches)), e.Matches...)
	}
	return e
}

// Normalize returns the normalized label text used as cache key.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Cache maps normalized labels to their entries.
type Cache map[string]Entry

// AddPlaceholders marks the specified labels as popular, unless they're
// already cached. It returns the number of newly added labels.
func (c Cache) AddPlaceholders(labels []string) int {
	added := 0
	for _, label := range labels {
		key := Normalize(label)
		if key == "" {
			continue
		}
		if _, ok := c[key]; ok {
			continue
		}
		c[key] = Entry{}
		added++
	}
	return added
}

// Computed returns the number of entries with computed matches.
func (c Cache) Computed() int {
	n := 0
	for _, e := range c {
		if e.Computed() {
			n++
		}
	}
	return n
}

// Snapshot is an immutable copy of a Cache that can be safely shared between
// workers.
type Snapshot struct {
	m Cache
}

// NewSnapshot returns a snapshot of the specified cache; later changes to the
// cache don't affect the snapshot.
func NewSnapshot(c Cache) *Snapshot {
	m := make(Cache, len(c))
	for key, e := range c {
		m[Normalize(key)] = e.clone()
	}
	return &Snapshot{m: m}
}

// Get returns (a copy of) the snapshot's entry for the normalized label key.
func (s *Snapshot) Get(key string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.m[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Cache returns a copy of the snapshot as a mutable Cache.
func (s *Snapshot) Cache() Cache {
	c := make(Cache, s.Len())
	if s == nil {
		return c
	}
	for key, e := range s.m {
		c[key] = e.clone()
	}
	return c
}

// View is a worker-private view onto a shared snapshot. It is not safe for
// concurrent use: each worker needs its own View.
type View struct {
	snapshot *Snapshot
	delta    Cache // freshly computed popular labels
}

// NewView returns a new private view onto the specified snapshot.
func NewView(s *Snapshot) *View {
	return &View{
		snapshot: s,
		delta:    Cache{},
	}
}

// Lookup returns the cached entry for the label (normalized by the caller) and
// whether the label is popular at all. The returned entry might not have been
// computed yet.
func (v *View) Lookup(key string) (Entry, bool) {
	if e, ok := v.delta[key]; ok {
		return e.clone(), true
	}
	return v.snapshot.Get(key)
}

// Store records freshly computed matches and counts for the label in the
// view's delta.
func (v *View) Store(key string, matches []types.CodeMatch, counts types.TypeCounts) {
	if matches == nil {
		matches = []types.CodeMatch{}
	}
	v.delta[key] = Entry{Matches: matches, Counts: counts}.clone()
}

// Delta returns the entries computed through this view.
func (v *View) Delta() Cache { return v.delta }
