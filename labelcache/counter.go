// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package labelcache

import (
	"sort"

	"github.com/siemens/hlocate/types"
)

// Counter counts how often normalized labels occur across domains, in order
// to find the labels worth caching.
type Counter map[string]int

// CountDomain counts the labels of the specified domain, except for the TLD
// label.
func (c Counter) CountDomain(d *types.Domain) {
	for idx := 1; idx < len(d.Labels); idx++ {
		if key := Normalize(d.Labels[idx].Label); key != "" {
			c[key]++
		}
	}
}

// Add adds the counts of other to this counter.
func (c Counter) Add(other Counter) {
	for key, n := range other {
		c[key] += n
	}
}

// Popular returns the labels occurring at least threshold times, sorted by
// descending count and then alphabetically.
func (c Counter) Popular(threshold int) []string {
	labels := []string{}
	for key, n := range c {
		if n >= threshold {
			labels = append(labels, key)
		}
	}
	sort.Slice(labels, func(a, b int) bool {
		if c[labels[a]] != c[labels[b]] {
			return c[labels[a]] > c[labels[b]]
		}
		return labels[a] < labels[b]
	})
	return labels
}
