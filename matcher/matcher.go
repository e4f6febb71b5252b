// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package matcher

import (
	"strings"

	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/types"
)

// Stats summarizes a matching run.
type Stats struct {
	Domains        int              `json:"domains"`         // domains processed
	LocatedDomains int              `json:"located_domains"` // domains with at least one match
	Labels         int              `json:"labels"`          // labels processed, excluding TLDs
	LocatedLabels  int              `json:"located_labels"`  // labels with at least one match
	SubLabels      int              `json:"sublabels"`       // dash tokens run against the code table
	LabelLength    int              `json:"label_length"`    // sum of label lengths
	PopularHits    int              `json:"popular_hits"`    // popular labels, either reused or stored
	Matches        types.TypeCounts `json:"matches"`         // matches per code type
}

// Add adds the other statistics to these statistics.
func (s *Stats) Add(other Stats) {
	s.Domains += other.Domains
	s.LocatedDomains += other.LocatedDomains
	s.Labels += other.Labels
	s.LocatedLabels += other.LocatedLabels
	s.SubLabels += other.SubLabels
	s.LabelLength += other.LabelLength
	s.PopularHits += other.PopularHits
	s.Matches.Add(other.Matches)
}

// Tokenize splits a label into its dash-separated tokens. An empty label has
// no tokens.
func Tokenize(label string) []string {
	if label == "" {
		return nil
	}
	return strings.Split(label, "-")
}

// MatchLabel matches the tokens of a single (normalized) label against the
// code table, without any caching. It returns the matches in token order,
// the matches per code type, and the number of tokens.
func MatchLabel(label string, table codetable.Table) ([]types.CodeMatch, types.TypeCounts, int) {
	var counts types.TypeCounts
	tokens := Tokenize(label)
	var matches []types.CodeMatch
	for _, token := range tokens {
		if token == "" {
			continue
		}
		entry, typ, ok := table.Lookup(token)
		if !ok {
			continue
		}
		matches = append(matches, types.CodeMatch{
			LocationID: entry.LocationID,
			CodeType:   typ,
		})
		counts.Inc(typ)
	}
	return matches, counts, len(tokens)
}

// MatchDomain matches all labels of the domain except its TLD label against
// the code table, replacing any previous matches of the labels with the
// matches found. It returns true if at least one label matched, as well as
// the statistics of this run. Passing a nil cache disables caching.
//
// Labels the cache considers popular either get their already computed
// matches copied, or their freshly computed matches stored into the cache.
func MatchDomain(d *types.Domain, table codetable.Table, cache *labelcache.View) (bool, Stats) {
	stats := Stats{Domains: 1}
	located := false
	// Matches from an earlier pass, such as when reading a result stream,
	// must not pile up.
	for idx := range d.Labels {
		d.Labels[idx].Matches = nil
	}
	for idx := 1; idx < len(d.Labels); idx++ {
		label := &d.Labels[idx]
		key := labelcache.Normalize(label.Label)
		stats.Labels++
		stats.LabelLength += len(label.Label)

		var entry labelcache.Entry
		popular := false
		if cache != nil {
			entry, popular = cache.Lookup(key)
		}
		var matches []types.CodeMatch
		if popular && entry.Computed() {
			matches = entry.Matches
			stats.Matches.Add(entry.Counts)
		} else {
			var counts types.TypeCounts
			var tokens int
			matches, counts, tokens = MatchLabel(key, table)
			stats.SubLabels += tokens
			stats.Matches.Add(counts)
			if popular {
				cache.Store(key, matches, counts)
			}
		}
		if popular {
			stats.PopularHits++
		}
		if len(matches) > 0 {
			label.AddMatches(matches...)
			stats.LocatedLabels++
			located = true
		}
	}
	if located {
		stats.LocatedDomains = 1
	}
	return located, stats
}
