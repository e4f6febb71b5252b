// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/siemens/hlocate/geo"
	"github.com/siemens/hlocate/location"

	"github.com/spf13/cobra"
	"github.com/thediveo/lxkns/log"
)

func newNearbyCmd() *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:   "nearby [flags] LOCATIONS LAT,LON",
		Short: "list the known locations around a point, nearest first",
		Long: `nearby lists the locations of the location database LOCATIONS within
--radius km of LAT,LON, nearest first. Separate negative latitudes from the
flags using "--", such as in "nearby locations.json -- -33.92,18.42".`,
		Args:  cobra.ExactArgs(2),
		PreRunE: func(_ *cobra.Command, args []string) error {
			if _, err := geo.ParseLatLon(args[1]); err != nil {
				return err
			}
			if radius < 0 {
				return fmt.Errorf("--radius must not be negative")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNearby(cmd.OutOrStdout(), args[0], args[1], radius)
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 100, "radius in km")
	return cmd
}

func runNearby(out io.Writer, dbPath string, near string, radiusKm float64) error {
	center, err := geo.ParseLatLon(near)
	if err != nil {
		return err
	}
	db, err := location.Load(dbPath)
	if err != nil {
		return err
	}
	index := location.NewIndex(db)
	log.Debugf("indexed %d locations", index.Len())
	nearby, err := index.Within(center, radiusKm)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "LOCATION\tCITY\tCOORDINATES\tDISTANCE")
	for _, n := range nearby {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1fkm\n", n.ID, n.CityName, n.Point, n.DistanceKm)
	}
	return nil
}
