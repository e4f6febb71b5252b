// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
	"github.com/thediveo/lxkns/log"
)

var debug *bool

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:     "hlocate",
		Short:   "hlocate finds location hints in the labels of hostnames",
		Version: "0.9",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if *debug {
				log.SetLevel(log.DebugLevel)
				log.Debugf("debug logging enabled")
			}
		},
	}
	// Sets up the flags.
	debug = rootCmd.PersistentFlags().Bool(
		"debug", false, "enable debugging output")
	rootCmd.AddCommand(
		newFindCmd(),
		newPopularCmd(),
		newCandidatesCmd(),
		newNearbyCmd(),
		newResolveCmd(),
	)
	return
}
