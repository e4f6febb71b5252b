/*
Package labelcache implements the popular-label cache: a mapping from
normalized label texts to their code matches and per-type match counts, so
that labels seen across many hostnames don't need to run the gauntlet of the
code table over and over again.

The cache is never shared live between workers. Instead, a coordinator hands
out the same read-only [Snapshot] to all workers, and each worker wraps it in
its own private [View]. A View records freshly computed popular labels only in
its private delta. After all workers are done, [MergeInto] unions the deltas
(first-writer-wins) into the new canonical [Cache].

	           +----------+
	Snapshot-->| View  #0 +-->delta #0--+
	     |     +----------+             |    +-------+
	     +---->| View  #1 +-->delta #1--+--->| Merge +-->Cache
	     |     +----------+             |    +-------+
	     +---->|   ...    +-->  ...   --+

A label is “popular” when it is present in the cache at all, even if its
matches haven't been computed yet: such placeholder entries are typically
seeded from a list of frequent labels, see [Cache.AddPlaceholders] and
[Counter].
*/
package labelcache
