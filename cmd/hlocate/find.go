// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/siemens/hlocate/codetable"
	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/labelcache"
	"github.com/siemens/hlocate/partition"

	"github.com/gosuri/uilive"
	"github.com/spf13/cobra"
)

const maxPartitions = 256

type findOptions struct {
	fileCount   uint
	amount      uint
	loadCache   string // previously found popular labels (cache)
	popular     string // list of popular labels to seed and save
	cacheOut    string
	profile     string
	batchSize   uint
	outDir      string
	workDir     string
	refreshRate time.Duration
}

func newFindCmd() *cobra.Command {
	opts := &findOptions{}
	cmd := &cobra.Command{
		Use:   "find [flags] PATTERN CODETABLE",
		Short: "find location codes in the hostnames of a partitioned dataset",
		Long: `find matches the labels of all hostnames in the dataset partitions named by
PATTERN against the location code regular expressions in CODETABLE. PATTERN
contains "{}" as the placeholder for the partition index. Hostnames with
location codes are written to <partition>_found.json, all others to
<partition>_not_found.json.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.fileCount < 1 || opts.fileCount > maxPartitions {
				return fmt.Errorf("--file-count out of range [1..%d]", maxPartitions)
			}
			if opts.refreshRate < 10*time.Millisecond {
				return fmt.Errorf("--refresh must be at least 10ms")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.UintVarP(&opts.fileCount, "file-count", "n", 8,
		"number of dataset partitions (and workers)")
	flags.UintVarP(&opts.amount, "amount", "a", 0,
		"maximum number of domains to process per partition, 0 for all")
	flags.StringVarP(&opts.loadCache, "load-popular-labels", "d", "",
		"load previously found popular labels from `FILE`")
	flags.StringVarP(&opts.popular, "save-popular-labels", "p", "",
		"cache the labels listed in `FILE` and save the cache to --cache-out")
	flags.StringVar(&opts.cacheOut, "cache-out", "popular_labels_found.json",
		"`FILE` to save the found popular labels to")
	flags.StringVarP(&opts.profile, "profile", "r", "",
		"write a CPU profile to `FILE`")
	flags.UintVar(&opts.batchSize, "batch-size", dataset.DefaultBatchSize,
		"number of domains per line in the result files")
	flags.StringVar(&opts.outDir, "out-dir", "",
		"directory for the result files, defaults to the dataset directory")
	flags.StringVar(&opts.workDir, "work-dir", "",
		"directory for exchanging cache updates, defaults to a temporary directory")
	flags.DurationVar(&opts.refreshRate, "refresh", 250*time.Millisecond,
		"progress display refresh interval")
	return cmd
}

// runFind sets up the popular label cache, runs the partition workers while
// rendering their progress, and finally renders the summary.
func runFind(out io.Writer, opts *findOptions, pattern string, tablePath string) error {
	table, err := codetable.Load(tablePath)
	if err != nil {
		return err
	}

	cache := labelcache.Cache{}
	if opts.loadCache != "" {
		cache = labelcache.LoadOrEmpty(opts.loadCache)
	}
	options := []partition.Option{
		partition.WithCache(cache),
		partition.WithLimit(opts.amount),
		partition.WithBatchSize(opts.batchSize),
		partition.WithOutputDir(opts.outDir),
		partition.WithWorkDir(opts.workDir),
	}
	if opts.popular != "" {
		labels, err := labelcache.LoadPopularLabels(opts.popular)
		if err != nil {
			return err
		}
		cache.AddPlaceholders(labels)
		options = append(options, partition.WithSavePath(opts.cacheOut))
	}
	if opts.profile != "" {
		options = append(options, partition.WithCPUProfile(opts.profile))
	}

	coord, err := partition.New(pattern, int(opts.fileCount), table, options...)
	if err != nil {
		return err
	}

	// Fire off the rendering goroutine; it stops only after all workers have
	// finished, rendering a final update before signalling renderingDone.
	runDone := make(chan struct{})
	renderingDone := make(chan struct{})
	go func() {
		term := uilive.New()
		term.Out = out
		r := newProgressRenderer(term, coord.Workers())
		defer func() {
			r.Render()
			term.Flush()
			close(renderingDone)
		}()
		ticker := time.NewTicker(opts.refreshRate)
		defer ticker.Stop()
		for {
			r.Render()
			term.Flush()
			select {
			case <-ticker.C:
			case <-runDone:
				return
			}
		}
	}()

	result, err := coord.Run()
	close(runDone)
	<-renderingDone
	if result != nil {
		renderSummary(out, result)
	}
	return err
}
