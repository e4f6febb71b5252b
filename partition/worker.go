// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package partition

import (
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/matcher"
)

// DeltaPath returns the path of the private cache delta file of the worker
// for the specified partition.
func DeltaPath(workdir string, index int) string {
	return filepath.Join(workdir, fmt.Sprintf("popular_labels_found_%d.json", index))
}

// Worker processes a single dataset partition.
type Worker struct {
	index     int
	path      string // dataset partition file
	table     codetable.Table
	view      *labelcache.View
	limit     int // maximum number of domains to process, or 0 for all.
	batchSize int
	outDir    string
	workDir   string

	processed atomic.Int64
	done      atomic.Bool
}

// Index returns the partition index of this worker.
func (w *Worker) Index() int { return w.index }

// Path returns the dataset file this worker processes.
func (w *Worker) Path() string { return w.path }

// Processed returns the number of domains processed so far. It is safe to
// call Processed while the worker is running.
func (w *Worker) Processed() int64 { return w.processed.Load() }

// Done returns true after the worker has finished, successfully or not.
func (w *Worker) Done() bool { return w.done.Load() }

// Run processes the worker's partition, returning the matching statistics.
// Run aborts on the first malformed record. Only after successfully
// processing its partition, the worker saves its cache delta.
func (w *Worker) Run() (stats matcher.Stats, err error) {
	defer w.done.Store(true)

	in, err := dataset.Open(w.path)
	if err != nil {
		return stats, fmt.Errorf("partition %d: %w", w.index, err)
	}
	defer in.Close()

	locatedPath, unlocatedPath := dataset.OutputPaths(w.path, w.outDir)
	located, err := dataset.Create(locatedPath, w.batchSize)
	if err != nil {
		return stats, fmt.Errorf("partition %d: %w", w.index, err)
	}
	defer closeStream(located, &err)
	unlocated, err := dataset.Create(unlocatedPath, w.batchSize)
	if err != nil {
		return stats, fmt.Errorf("partition %d: %w", w.index, err)
	}
	defer closeStream(unlocated, &err)

	r := dataset.NewReader(in, w.path)
	for w.limit == 0 || stats.Domains < w.limit {
		d, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("partition %d aborted: %w", w.index, err)
		}
		found, dstats := matcher.MatchDomain(d, w.table, w.view)
		stats.Add(dstats)
		if found {
			err = located.Write(d)
		} else {
			err = unlocated.Write(d)
		}
		if err != nil {
			return stats, fmt.Errorf("partition %d: cannot write result: %w", w.index, err)
		}
		w.processed.Add(1)
	}

	if err := labelcache.Save(DeltaPath(w.workDir, w.index), w.view.Delta()); err != nil {
		return stats, fmt.Errorf("partition %d: %w", w.index, err)
	}
	return stats, nil
}

// closeStream closes a result stream, reporting a close error only if there
// wasn't an error before.
func closeStream(bw *dataset.BatchWriter, err *error) {
	if cerr := bw.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("cannot close result stream: %w", cerr)
	}
}
