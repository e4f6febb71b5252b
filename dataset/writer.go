// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/siemens/hlocate/types"
)

// DefaultBatchSize is the number of records per flushed batch.
const DefaultBatchSize = 10000

// BatchWriter writes domains in batches of a fixed size, each batch as a line
// consisting of a JSON array. Writers are not safe for concurrent use.
type BatchWriter struct {
	w       *bufio.Writer
	closer  io.Closer
	size    int
	batch   []*types.Domain
	written int
	closed  bool
}

// NewBatchWriter returns a BatchWriter writing batches of the specified size
// to w. If w is an io.Closer, it gets closed when closing the BatchWriter.
func NewBatchWriter(w io.Writer, size int) *BatchWriter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	bw := &BatchWriter{
		w:     bufio.NewWriter(w),
		size:  size,
		batch: make([]*types.Domain, 0, size),
	}
	if c, ok := w.(io.Closer); ok {
		bw.closer = c
	}
	return bw
}

// Create creates (or truncates) the file at path and returns a BatchWriter on
// it.
func Create(path string, size int) (*BatchWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create result stream: %w", err)
	}
	return NewBatchWriter(f, size), nil
}

// Write appends a domain to the current batch, flushing the batch when it has
// reached the batch size.
func (bw *BatchWriter) Write(d *types.Domain) error {
	if bw.closed {
		return fmt.Errorf("write to closed batch writer")
	}
	bw.batch = append(bw.batch, d)
	if len(bw.batch) >= bw.size {
		return bw.flush()
	}
	return nil
}

// Written returns the number of domains written so far, including the ones
// still pending in the current batch.
func (bw *BatchWriter) Written() int { return bw.written + len(bw.batch) }

func (bw *BatchWriter) flush() error {
	if len(bw.batch) == 0 {
		return nil
	}
	data, err := json.Marshal(bw.batch)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := bw.w.Write(data); err != nil {
		return err
	}
	bw.written += len(bw.batch)
	bw.batch = bw.batch[:0]
	return bw.w.Flush()
}

// Close flushes any pending batch and closes the underlying writer, if
// closeable.
func (bw *BatchWriter) Close() error {
	if bw.closed {
		return nil
	}
	bw.closed = true
	err := bw.flush()
	if bw.closer != nil {
		if cerr := bw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
