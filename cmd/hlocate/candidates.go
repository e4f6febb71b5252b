// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/geo"
	"github.com/siemens/hlocate/location"

	"github.com/spf13/cobra"
)

type candidatesOptions struct {
	near   string
	radius float64
}

func newCandidatesCmd() *cobra.Command {
	opts := &candidatesOptions{}
	cmd := &cobra.Command{
		Use:   "candidates [flags] LOCATED LOCATIONS",
		Short: "list the candidate locations of located hostnames",
		Long: `candidates reads the located hostnames from the result file LOCATED and
resolves their location code matches using the location database LOCATIONS.
When --near is given, only candidates within --radius km are listed.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.near == "" {
				return nil
			}
			if _, err := geo.ParseLatLon(opts.near); err != nil {
				return err
			}
			if opts.radius < 0 {
				return fmt.Errorf("--radius must not be negative")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCandidates(cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.near, "near", "",
		"only list candidates near `LAT,LON`")
	flags.Float64Var(&opts.radius, "radius", 100,
		"radius in km around --near")
	return cmd
}

func runCandidates(out io.Writer, opts *candidatesOptions, locatedPath string, dbPath string) error {
	db, err := location.Load(dbPath)
	if err != nil {
		return err
	}
	var center geo.Point
	if opts.near != "" {
		if center, err = geo.ParseLatLon(opts.near); err != nil {
			return err
		}
	}

	in, err := dataset.Open(locatedPath)
	if err != nil {
		return err
	}
	defer in.Close()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "DOMAIN\tLABEL\tTYPE\tLOCATION\tCITY\tCOORDINATES\tDISTANCE")
	r := dataset.NewReader(in, locatedPath)
	for {
		d, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		candidates := location.Resolve(d, db)
		if opts.near != "" {
			if candidates, err = location.FilterNear(candidates, center, opts.radius); err != nil {
				return err
			}
		}
		for _, c := range candidates {
			distance := ""
			if opts.near != "" {
				km, _ := geo.Haversine(center, c.Point)
				distance = fmt.Sprintf("%.1fkm", km)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.Name, c.Label, c.CodeType, c.ID, c.CityName, c.Point, distance)
		}
	}
}
