// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/miekg/dns"
)

// Pool runs DNS tasks on a fixed set of client connections to a single
// resolver.
type Pool struct {
	client   *dns.Client
	qtypes   []uint16 // resource record types to query for in ResolveName
	workers  *workerpool.WorkerPool
	mu       sync.Mutex // guards free
	free     []*dns.Conn
	stopOnce sync.Once
}

// Option configures a Pool created by New.
type Option func(*Pool)

// New dials size DNS client connections to the resolver at addr and returns
// a Pool running at most size tasks at the same time, each task on a
// connection of its own. The context only limits dialing; tasks submitted
// later need to bring their own context, if any.
func New(ctx context.Context, size int, dnsclnt *dns.Client, addr string, options ...Option) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("DNS pool size must be at least 1, got: %d", size)
	}
	if dnsclnt == nil {
		dnsclnt = &dns.Client{}
	}
	pool := &Pool{
		client: dnsclnt,
		qtypes: []uint16{dns.TypeA, dns.TypeAAAA},
	}
	for _, opt := range options {
		opt(pool)
	}
	free := make([]*dns.Conn, 0, size)
	for i := 0; i < size; i++ {
		conn, err := dnsclnt.DialContext(ctx, addr)
		if err != nil {
			// Immediately release all connections created so far.
			for _, conn := range free {
				conn.Close()
			}
			return nil, fmt.Errorf("cannot connect to DNS resolver %s: %w", addr, err)
		}
		free = append(free, conn)
	}
	pool.free = free
	pool.workers = workerpool.New(size)
	return pool, nil
}

// WithQueryTypes sets the resource record types queried by
// [Pool.ResolveName], defaulting to A and AAAA.
func WithQueryTypes(qtypes ...uint16) Option {
	return func(p *Pool) {
		if len(qtypes) > 0 {
			p.qtypes = qtypes
		}
	}
}

// Submit queues a task that gets run as soon as a connection becomes free.
func (p *Pool) Submit(task func(conn *dns.Conn)) {
	p.workers.Submit(func() { p.task(task) })
}

// ResolveName queues the lookup of the configured record types for name and
// then calls fn exactly once with the textual addresses gathered over all
// record types. fn receives an error instead if a query fails, no address
// was found at all, or ctx is done before all queries have been sent.
func (p *Pool) ResolveName(ctx context.Context, name string, fn func([]string, error)) {
	p.Submit(func(conn *dns.Conn) {
		var addrs []string
		var err error
		defer func() { fn(addrs, err) }()

		fqdn := dns.Fqdn(name)
		for _, qtype := range p.qtypes {
			if err = ctx.Err(); err != nil {
				return
			}
			msg := dns.Msg{
				MsgHdr: dns.MsgHdr{Id: dns.Id()},
			}
			msg.SetQuestion(fqdn, qtype)
			var r *dns.Msg
			r, _, err = p.client.ExchangeWithConn(&msg, conn)
			if err != nil {
				return
			}
			for _, rr := range r.Answer {
				switch addrRR := rr.(type) {
				case *dns.A:
					addrs = append(addrs, addrRR.A.String())
				case *dns.AAAA:
					addrs = append(addrs, addrRR.AAAA.String())
				}
			}
		}
		if len(addrs) == 0 {
			err = fmt.Errorf("query for %q yields no answers", name)
		}
	})
}

// task hands a connection from the free list to the specified function and
// returns it to the free list afterwards.
func (p *Pool) task(task func(conn *dns.Conn)) {
	p.mu.Lock()
	if len(p.free) == 0 {
		p.mu.Unlock()
		panic("no free DNS client connection available")
	}
	last := len(p.free) - 1
	conn := p.free[last]
	p.free = p.free[:last]
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.free = append(p.free, conn)
		p.mu.Unlock()
	}()
	task(conn)
}

// StopWait waits for all enqueued DNS tasks to finish, and then shuts down
// the pool. StopWait can be called multiple times.
func (p *Pool) StopWait() {
	p.stopOnce.Do(func() {
		p.workers.StopWait()
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, conn := range p.free {
			conn.Close()
		}
		p.free = nil
	})
}
