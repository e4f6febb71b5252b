// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/resolve"

	"github.com/dustin/go-humanize"
	"github.com/miekg/dns"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	server    string
	workers   uint
	batchSize uint
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [flags] INPUT OUTPUT",
		Short: "fill in missing addresses of dataset records",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.workers < 1 || opts.workers > 100 {
				return fmt.Errorf("--workers out of range [1..100]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", "",
		"DNS resolver `ADDRESS`, defaults to the first nameserver in /etc/resolv.conf")
	flags.UintVar(&opts.workers, "workers", 5,
		"number of DNS workers")
	flags.UintVar(&opts.batchSize, "batch-size", dataset.DefaultBatchSize,
		"number of domains per line in OUTPUT")
	return cmd
}

func runResolve(ctx context.Context, out io.Writer, opts *resolveOptions, inPath string, outPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	server, err := resolverAddress(opts.server)
	if err != nil {
		return err
	}
	pool, err := resolve.New(ctx, int(opts.workers), &dns.Client{}, server)
	if err != nil {
		return err
	}
	defer pool.StopWait()

	in, err := dataset.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := dataset.Create(outPath, int(opts.batchSize))
	if err != nil {
		return err
	}
	stats, err := resolve.Enrich(ctx, pool, dataset.NewReader(in, inPath), w, resolve.DefaultWindow)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s records, %s lacking addresses, %s resolved\n",
		humanize.Comma(int64(stats.Records)),
		humanize.Comma(int64(stats.Queried)),
		humanize.Comma(int64(stats.Resolved)))
	return nil
}

// resolverAddress returns the specified resolver address with the DNS port
// added if missing, or the first nameserver configured in /etc/resolv.conf.
func resolverAddress(server string) (string, error) {
	if server == "" {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return "", fmt.Errorf("cannot determine DNS resolver: %w", err)
		}
		if len(conf.Servers) == 0 {
			return "", fmt.Errorf("no DNS resolver configured")
		}
		return net.JoinHostPort(conf.Servers[0], conf.Port), nil
	}
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server, nil
	}
	return net.JoinHostPort(server, "53"), nil
}
