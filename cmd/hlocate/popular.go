// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/labelcache"

	"github.com/dustin/go-humanize"
	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"
	"github.com/thediveo/lxkns/log"
)

type popularOptions struct {
	fileCount uint
	threshold int
	output    string
}

func newPopularCmd() *cobra.Command {
	opts := &popularOptions{}
	cmd := &cobra.Command{
		Use:   "popular [flags] PATTERN",
		Short: "determine the most frequent hostname labels of a partitioned dataset",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.fileCount < 1 || opts.fileCount > maxPartitions {
				return fmt.Errorf("--file-count out of range [1..%d]", maxPartitions)
			}
			if opts.threshold < 1 {
				return fmt.Errorf("--threshold must be at least 1")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPopular(cmd.OutOrStdout(), opts, args[0])
		},
	}
	flags := cmd.Flags()
	flags.UintVarP(&opts.fileCount, "file-count", "n", 8,
		"number of dataset partitions (and workers)")
	flags.IntVar(&opts.threshold, "threshold", 100,
		"minimum number of occurrences of a popular label")
	flags.StringVarP(&opts.output, "output", "o", "popular_labels.json",
		"`FILE` to write the popular labels to")
	return cmd
}

// runPopular counts the labels of all partitions, one worker per partition,
// and writes the labels seen at least threshold times.
func runPopular(out io.Writer, opts *popularOptions, pattern string) error {
	n := int(opts.fileCount)
	counters := make([]labelcache.Counter, n)
	errs := make([]error, n)
	pool := workerpool.New(n)
	for idx := 0; idx < n; idx++ {
		idx := idx
		pool.Submit(func() {
			counters[idx], errs[idx] = countLabels(dataset.PartitionPath(pattern, idx))
		})
	}
	pool.StopWait()
	if err := errors.Join(errs...); err != nil {
		return err
	}

	total := labelcache.Counter{}
	for _, c := range counters {
		total.Add(c)
	}
	popular := total.Popular(opts.threshold)
	if err := labelcache.SavePopularLabels(opts.output, popular); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s of %s distinct labels seen at least %s times, written to %s\n",
		humanize.Comma(int64(len(popular))), humanize.Comma(int64(len(total))),
		humanize.Comma(int64(opts.threshold)), opts.output)
	return nil
}

func countLabels(path string) (labelcache.Counter, error) {
	in, err := dataset.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	counter := labelcache.Counter{}
	r := dataset.NewReader(in, path)
	for {
		d, err := r.Next()
		if err == io.EOF {
			log.Debugf("counted %d lines of %s", r.Line(), path)
			return counter, nil
		}
		if err != nil {
			return nil, err
		}
		counter.CountDomain(d)
	}
}
