// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/siemens/hlocate/dataset"
	"github.com/siemens/hlocate/types"

	"github.com/thediveo/lxkns/log"
)

// DefaultWindow is the default number of records resolved concurrently
// before they get written.
const DefaultWindow = 1000

// Stats summarizes an enrichment run.
type Stats struct {
	Records  int // records read
	Queried  int // records lacking addresses
	Resolved int // records with addresses filled in
}

// Enrich reads all records from r, resolves the addresses of records lacking
// both an IPv4 and an IPv6 address using the pool, and writes the records in
// their original order to w. Up to window records are in flight at any time.
// Enrich doesn't close w.
func Enrich(ctx context.Context, pool *Pool, r *dataset.Reader, w *dataset.BatchWriter, window int) (Stats, error) {
	if window < 1 {
		window = DefaultWindow
	}
	var stats Stats
	batch := make([]*types.Domain, 0, window)
	for {
		d, err := r.Next()
		if err != nil && err != io.EOF {
			return stats, err
		}
		if d != nil {
			stats.Records++
			batch = append(batch, d)
		}
		if len(batch) == window || (err == io.EOF && len(batch) > 0) {
			q, res := resolveBatch(ctx, pool, batch)
			stats.Queried += q
			stats.Resolved += res
			for _, d := range batch {
				if werr := w.Write(d); werr != nil {
					return stats, werr
				}
			}
			batch = batch[:0]
			if cerr := ctx.Err(); cerr != nil {
				return stats, cerr
			}
		}
		if err == io.EOF {
			return stats, nil
		}
	}
}

// resolveBatch resolves the addresses of those domains in the batch lacking
// any address, returning the number of domains queried and resolved.
func resolveBatch(ctx context.Context, pool *Pool, batch []*types.Domain) (queried int, resolved int) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, d := range batch {
		if d.IPv4Address != "" || d.IPv6Address != "" {
			continue
		}
		queried++
		wg.Add(1)
		d := d
		pool.ResolveName(ctx, d.Name, func(addrs []string, err error) {
			defer wg.Done()
			if err != nil {
				log.Debugf("cannot resolve %s: %s", d.Name, err)
				return
			}
			if assign(d, addrs) {
				mu.Lock()
				resolved++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return
}

// assign sets the first IPv4 and the first IPv6 address of addrs, returning
// true if at least one address has been set.
func assign(d *types.Domain, addrs []string) bool {
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			if d.IPv4Address == "" {
				d.IPv4Address = addr
			}
			continue
		}
		if d.IPv6Address == "" {
			d.IPv6Address = addr
		}
	}
	return d.IPv4Address != "" || d.IPv6Address != ""
}
