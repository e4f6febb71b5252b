/*
Package partition runs the code matcher over a partitioned dataset, with one
isolated worker per partition.

Each [Worker] owns exactly one partition file, a private [labelcache.View]
onto the shared read-only cache snapshot, as well as its private “located”
and “unlocated” result streams. Workers run synchronously over their
partition and finally persist their cache delta into a private file; they
never touch the canonical cache.

The [Coordinator] schedules all workers on a worker pool with as many workers
as there are partitions and then waits for all workers to terminate. Only
after this join barrier it merges the cache deltas in partition index order
into the new canonical cache (first-writer-wins), removes the delta files,
and sums up the statistics.

	partition 0 --> Worker #0 --> *_found.json, *_not_found.json, delta #0 --+
	partition 1 --> Worker #1 --> *_found.json, *_not_found.json, delta #1 --+--> merge
	...                                                                      |
	partition N-1 -> Worker #N-1 -> ...                                  ----+

⚠ There is no timeout whatsoever: a stalled worker blocks the coordinator
indefinitely at the join barrier. Production deployments need to supervise
runs from the outside.

# Acknowledgements

Under its hood, [Coordinator] leverages [gammazero/workerpool] as the
goroutine pool.

[gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package partition
