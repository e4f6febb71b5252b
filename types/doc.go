/*
Package types defines hlocate's information model. It revolves around a
[Domain] (a hostname) consisting of [DomainLabel] elements, where each label
collects the [CodeMatch] hints found in it. A CodeMatch names a location
identifier from the code table as well as the [CodeType] of the geographic
code that matched, such as an IATA airport code or a UN/LOCODE.

# Label Order

Labels are kept in TLD-first order: the label with index 0 always is the
right-most hostname component. Matching never looks at this label, as it
doesn't carry any location information worth mentioning (well, except for
country-code TLDs, but these are too coarse for our purposes).

# Counters

[TypeCounts] keeps per-code-type counters. It is a plain value type so that
per-worker statistics can be returned and accumulated without any sharing
between workers.
*/
package types
