// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"strings"

	"github.com/miekg/dns"
)

// CodeMatch is a candidate location hint: a location identifier from the code
// table together with the type of code that matched. It is not a resolved
// location.
type CodeMatch struct {
	LocationID string   `json:"location_id"`
	CodeType   CodeType `json:"code_type"`
}

// DomainLabel is a single component of a hostname, together with the code
// matches found in it. Matches are only ever appended to.
type DomainLabel struct {
	Index   int         `json:"index"`   // position in Domain.Labels, 0 is the TLD.
	Label   string      `json:"label"`   // label text as found in the hostname.
	Matches []CodeMatch `json:"matches"` // candidate location hints.
}

// HasMatches returns true if at least one code matched this label.
func (l *DomainLabel) HasMatches() bool { return len(l.Matches) > 0 }

// AddMatches appends code matches to this label.
func (l *DomainLabel) AddMatches(matches ...CodeMatch) {
	l.Matches = append(l.Matches, matches...)
}

// Domain is a hostname to be located, along with its labels in TLD-first
// order and optionally the addresses the name resolves to.
type Domain struct {
	Name        string        `json:"domain_name"`
	IPv4Address string        `json:"ip_address,omitempty"`
	IPv6Address string        `json:"ipv6_address,omitempty"`
	Labels      []DomainLabel `json:"domain_labels"`
}

// NewDomain returns a new Domain for the specified hostname with its labels
// split off according to DNS rules. The returned labels are ordered with the
// top-level label first, so that for "www.jfk.example.com" the label with
// index 0 is "com" and the label with index 3 is "www". A trailing dot is
// ignored.
func NewDomain(name, ipv4, ipv6 string) *Domain {
	name = strings.TrimSpace(name)
	names := dns.SplitDomainName(name)
	labels := make([]DomainLabel, len(names))
	for idx := range names {
		labels[idx] = DomainLabel{
			Index: idx,
			Label: names[len(names)-1-idx],
		}
	}
	return &Domain{
		Name:        strings.TrimSuffix(name, "."),
		IPv4Address: ipv4,
		IPv6Address: ipv6,
		Labels:      labels,
	}
}

// Matches returns all code matches of all labels, in label order.
func (d *Domain) Matches() []CodeMatch {
	var matches []CodeMatch
	for idx := range d.Labels {
		matches = append(matches, d.Labels[idx].Matches...)
	}
	return matches
}

// Located returns true if at least one label of this domain has a code match.
func (d *Domain) Located() bool {
	for idx := range d.Labels {
		if d.Labels[idx].HasMatches() {
			return true
		}
	}
	return false
}
