// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package partition

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/matcher"

	"github.com/gammazero/workerpool"
	"github.com/thediveo/lxkns/log"
)

// WorkerCrashError reports a worker that terminated unexpectedly due to a
// panic.
type WorkerCrashError struct {
	Partition int
	Value     any    // recovered panic value
	Stack     []byte // stack trace at the time of the panic
}

func (e *WorkerCrashError) Error() string {
	return fmt.Sprintf("worker for partition %d crashed: %v", e.Partition, e.Value)
}

// PartitionResult is the outcome of processing a single partition.
type PartitionResult struct {
	Index    int
	Path     string
	Stats    matcher.Stats
	Duration time.Duration
	Err      error
}

// Result is the outcome of a whole run over all partitions.
type Result struct {
	Stats      matcher.Stats     // aggregated over all successful partitions
	Partitions []PartitionResult // in partition index order
	Cache      labelcache.Cache  // merged canonical cache
	Fresh      int               // number of cache entries newly computed in this run
}

// Coordinator runs a set of workers, one per dataset partition, and merges
// their results.
type Coordinator struct {
	pattern    string
	partitions int
	table      codetable.Table
	cache      labelcache.Cache
	limit      int
	batchSize  int
	outDir     string
	workDir    string
	savePath   string
	profile    string
	tempDir    bool // work directory has been created by the coordinator

	snapshot *labelcache.Snapshot
	workers  []*Worker
	runOnce  sync.Once
}

// Option can be passed to New when creating new Coordinator objects.
type Option func(*Coordinator)

// New returns a new Coordinator for the dataset partitions named by the
// specified pattern, where "{}" gets replaced by the partition indices 0 to
// partitions-1. The cache snapshot is taken when creating the Coordinator.
//
// The Coordinator can be configured using several options:
//   - [WithCache]
//   - [WithLimit]
//   - [WithBatchSize]
//   - [WithOutputDir]
//   - [WithWorkDir]
//   - [WithSavePath]
//   - [WithCPUProfile]
func New(pattern string, partitions int, table codetable.Table, options ...Option) (*Coordinator, error) {
	if partitions < 1 {
		return nil, fmt.Errorf("number of partitions must be at least 1, got: %d", partitions)
	}
	c := &Coordinator{
		pattern:    pattern,
		partitions: partitions,
		table:      table,
		cache:      labelcache.Cache{},
		batchSize:  dataset.DefaultBatchSize,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.workDir == "" {
		dir, err := os.MkdirTemp("", "hlocate-")
		if err != nil {
			return nil, fmt.Errorf("cannot create work directory: %w", err)
		}
		c.workDir = dir
		c.tempDir = true
	}
	c.snapshot = labelcache.NewSnapshot(c.cache)
	c.workers = make([]*Worker, partitions)
	for idx := range c.workers {
		c.workers[idx] = &Worker{
			index:     idx,
			path:      dataset.PartitionPath(pattern, idx),
			table:     table,
			view:      labelcache.NewView(c.snapshot),
			limit:     c.limit,
			batchSize: c.batchSize,
			outDir:    c.outDir,
			workDir:   c.workDir,
		}
	}
	return c, nil
}

// WithCache sets the popular label cache to start from.
func WithCache(cache labelcache.Cache) Option {
	return func(c *Coordinator) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithLimit limits the number of domains processed per partition; 0 means no
// limit.
func WithLimit(limit uint) Option {
	return func(c *Coordinator) {
		c.limit = int(limit)
	}
}

// WithBatchSize sets the number of domains per batch in the result streams.
func WithBatchSize(size uint) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.batchSize = int(size)
		}
	}
}

// WithOutputDir places the result streams in the specified directory instead
// of alongside the dataset partitions.
func WithOutputDir(dir string) Option {
	return func(c *Coordinator) {
		c.outDir = dir
	}
}

// WithWorkDir sets the directory for exchanging cache deltas. Otherwise, a
// temporary directory gets used and removed after the run.
func WithWorkDir(dir string) Option {
	return func(c *Coordinator) {
		c.workDir = dir
	}
}

// WithSavePath persists the merged canonical cache to the specified file.
func WithSavePath(path string) Option {
	return func(c *Coordinator) {
		c.savePath = path
	}
}

// WithCPUProfile writes a CPU profile of the run to the specified file.
func WithCPUProfile(path string) Option {
	return func(c *Coordinator) {
		c.profile = path
	}
}

// Workers returns the workers of this Coordinator, in partition index order.
func (c *Coordinator) Workers() []*Worker { return c.workers }

// Run runs all workers and waits for them to terminate, and then merges their
// cache deltas. Run returns the merged results even if some partitions
// failed; the failures are then additionally reported in the error. Run can
// be called only once.
func (c *Coordinator) Run() (*Result, error) {
	err := errors.New("coordinator has already been run")
	var result *Result
	c.runOnce.Do(func() {
		result, err = c.run()
	})
	return result, err
}

func (c *Coordinator) run() (*Result, error) {
	if c.profile != "" {
		stop, err := startCPUProfile(c.profile)
		if err != nil {
			return nil, err
		}
		defer stop()
	}
	start := time.Now()
	results := make([]PartitionResult, c.partitions)
	pool := workerpool.New(c.partitions)
	for _, w := range c.workers {
		w := w
		pool.Submit(func() {
			results[w.index] = runWorker(w)
		})
	}
	// Join barrier: wait for all workers to terminate.
	pool.StopWait()
	log.Infof("all %d partitions done after %s", c.partitions, time.Since(start))

	result := &Result{
		Partitions: results,
		Cache:      c.snapshot.Cache(),
	}
	var errs []error
	for idx := range results {
		pr := &results[idx]
		deltaPath := DeltaPath(c.workDir, pr.Index)
		if pr.Err != nil {
			log.Errorf("%s", pr.Err)
			errs = append(errs, pr.Err)
			_ = os.Remove(deltaPath)
			continue
		}
		result.Stats.Add(pr.Stats)
		delta, err := labelcache.Load(deltaPath)
		if err != nil {
			log.Warnf("skipping cache delta of partition %d: %s", pr.Index, err)
			continue
		}
		result.Fresh += labelcache.MergeInto(result.Cache, delta)
		if err := os.Remove(deltaPath); err != nil {
			log.Warnf("cannot remove cache delta: %s", err)
		}
	}
	c.removeTempWorkDir()
	logStats(result)

	if c.savePath != "" {
		if err := labelcache.Save(c.savePath, result.Cache); err != nil {
			errs = append(errs, err)
		} else {
			log.Infof("saved %d popular labels (%d computed) to %s",
				len(result.Cache), result.Cache.Computed(), c.savePath)
		}
	}
	return result, errors.Join(errs...)
}

// runWorker runs the specified worker, turning panics into a
// WorkerCrashError.
func runWorker(w *Worker) (pr PartitionResult) {
	pr.Index = w.index
	pr.Path = w.path
	start := time.Now()
	defer func() {
		pr.Duration = time.Since(start)
		if v := recover(); v != nil {
			w.done.Store(true)
			pr.Err = &WorkerCrashError{Partition: w.index, Value: v, Stack: debug.Stack()}
			return
		}
		log.Infof("partition %d: running time %s", w.index, pr.Duration)
	}()
	pr.Stats, pr.Err = w.Run()
	return
}

// removeTempWorkDir removes the work directory if the Coordinator created it
// on its own.
func (c *Coordinator) removeTempWorkDir() {
	if !c.tempDir {
		return
	}
	if err := os.RemoveAll(c.workDir); err != nil {
		log.Warnf("cannot remove work directory: %s", err)
	}
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot start CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func logStats(r *Result) {
	s := r.Stats
	log.Infof("total entries: %d", s.Domains)
	log.Infof("total labels: %d", s.Labels)
	log.Infof("total label length: %d", s.LabelLength)
	log.Infof("popular_count: %d", s.PopularHits)
	log.Infof("entries with location found: %d", s.LocatedDomains)
	log.Infof("label with location found: %d", s.LocatedLabels)
	log.Infof("matches: %d", s.Matches.Total())
	log.Infof("match count: %s", formatCounts(s))
	log.Infof("fresh popular labels: %d", r.Fresh)
}

func formatCounts(s matcher.Stats) string {
	data, err := s.Matches.MarshalJSON()
	if err != nil {
		return err.Error()
	}
	return string(data)
}
