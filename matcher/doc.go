/*
Package matcher finds geographic code hints in hostname labels.

[MatchDomain] works on all labels of a [types.Domain] except the TLD. Each
label is normalized and then looked up in the worker's private
[labelcache.View]: popular labels with already computed matches are simply
copied over. All other labels are split into their dash-separated tokens,
and each token is matched against the code table in table order, where the
first matching entry wins.

	"ae-0.fra-defra.example.net"
	        └┬┘ └─┬─┘
	         │    └── locode "defra"
	         └─────── iata "fra"

Instead of accumulating statistics in some hidden state, matching returns
explicit [Stats] values, which callers then sum up using [Stats.Add].
*/
package matcher
