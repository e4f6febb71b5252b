// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/siemens/hlocate/types"
)

// maxLineSize limits the size of a single dataset line; batches of 10,000
// records easily reach several MiB.
const maxLineSize = 256 << 20

// Record is the on-disk shape of a dataset record. Result streams
// additionally carry the labels with their code matches.
type Record struct {
	DomainName  string              `json:"domain_name"`
	IPv4Address string              `json:"ip_address,omitempty"`
	IPv6Address string              `json:"ipv6_address,omitempty"`
	Labels      []types.DomainLabel `json:"domain_labels,omitempty"`
}

// MalformedRecordError reports a dataset line not matching the expected
// record shape.
type MalformedRecordError struct {
	File string
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record in %s, line %d: %s", e.File, e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Reader reads domains from a dataset stream, line by line.
type Reader struct {
	name    string
	scanner *bufio.Scanner
	line    int
	pending []*types.Domain
	err     error
}

// NewReader returns a new Reader for the dataset stream r; name is only used
// in error messages.
func NewReader(r io.Reader, name string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		name:    name,
		scanner: scanner,
	}
}

// Next returns the next domain, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*types.Domain, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				r.err = fmt.Errorf("cannot read %s: %w", r.name, err)
			} else {
				r.err = io.EOF
			}
			return nil, r.err
		}
		r.line++
		domains, err := parseLine(r.scanner.Bytes())
		if err != nil {
			r.err = &MalformedRecordError{File: r.name, Line: r.line, Err: err}
			return nil, r.err
		}
		r.pending = domains
	}
	d := r.pending[0]
	r.pending = r.pending[1:]
	return d, nil
}

// Line returns the number of the line most recently read.
func (r *Reader) Line() int { return r.line }

func parseLine(line []byte) ([]*types.Domain, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	var records []Record
	if line[0] == '[' {
		if err := json.Unmarshal(line, &records); err != nil {
			return nil, err
		}
	} else {
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, err
		}
		records = []Record{record}
	}
	domains := make([]*types.Domain, 0, len(records))
	for idx, rec := range records {
		if rec.DomainName == "" {
			return nil, fmt.Errorf("record #%d lacks a domain name", idx)
		}
		d := types.NewDomain(rec.DomainName, rec.IPv4Address, rec.IPv6Address)
		if len(rec.Labels) == len(d.Labels) {
			for lidx := range rec.Labels {
				d.Labels[lidx].AddMatches(rec.Labels[lidx].Matches...)
			}
		}
		domains = append(domains, d)
	}
	return domains, nil
}
