// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package labelcache

// MergeInto merges a single delta into the canonical cache. Deltas get
// merged one after another, and the first computed entry for a label wins:
// later duplicates are discarded, never overwritten. Placeholders without
// computed matches are replaced by computed entries. MergeInto returns the
// number of entries taken over from the delta.
func MergeInto(canonical Cache, delta Cache) int {
	taken := 0
	for key, e := range delta {
		key = Normalize(key)
		if existing, ok := canonical[key]; ok && (existing.Computed() || !e.Computed()) {
			continue
		}
		canonical[key] = e.clone()
		taken++
	}
	return taken
}
