// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/siemens/hlocate/partition"
	"github.com/siemens/hlocate/types"

	"github.com/dustin/go-humanize"
)

// progressRenderer renders the per-partition progress of running workers.
type progressRenderer struct {
	w       io.Writer
	workers []*partition.Worker
	spinner *spinner
	width   int // of the widest partition file name
}

func newProgressRenderer(w io.Writer, workers []*partition.Worker) *progressRenderer {
	width := 0
	for _, worker := range workers {
		if l := len(filepath.Base(worker.Path())); l > width {
			width = l
		}
	}
	return &progressRenderer{
		w:       w,
		workers: workers,
		spinner: newSpinner(),
		width:   width,
	}
}

// Render the current progress of all workers.
func (r *progressRenderer) Render() {
	running := 0
	for _, worker := range r.workers {
		if !worker.Done() {
			running++
		}
	}
	fmt.Fprintf(r.w, "%s %d of %d partitions running\n",
		headingStyle.Styled("matching:"), running, len(r.workers))
	for _, worker := range r.workers {
		fmt.Fprintf(r.w, "  %-*s %12s ",
			r.width, filepath.Base(worker.Path()), humanize.Comma(worker.Processed()))
		if worker.Done() {
			fmt.Fprintln(r.w, doneStyle.Styled("done"))
			continue
		}
		fmt.Fprintln(r.w, runningStyle.Styled(r.spinner.Spinner()))
	}
	r.spinner.Next()
}

// renderSummary renders the statistics of a finished run.
func renderSummary(w io.Writer, res *partition.Result) {
	s := res.Stats
	fmt.Fprintln(w, headingStyle.Styled("summary"))
	row := func(name string, value int) {
		fmt.Fprintf(w, "  %-26s %14s\n", name, humanize.Comma(int64(value)))
	}
	row("domains", s.Domains)
	row("domains with location", s.LocatedDomains)
	row("labels", s.Labels)
	row("labels with location", s.LocatedLabels)
	row("sublabels", s.SubLabels)
	row("total label length", s.LabelLength)
	row("popular label hits", s.PopularHits)
	row("fresh popular labels", res.Fresh)
	for _, t := range types.CodeTypes {
		row(t.String()+" matches", s.Matches.Get(t))
	}
	for _, pr := range res.Partitions {
		if pr.Err == nil {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", failedStyle.Styled("failed:"), pr.Err)
	}
}
