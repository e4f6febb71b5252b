// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// IndexPlaceholder is the placeholder in dataset file name patterns that gets
// replaced by the partition index.
const IndexPlaceholder = "{}"

// compression suffixes Open knows how to deal with.
var compressionSuffixes = []string{".gz", ".zst"}

// PartitionPath returns the file name of the partition with the specified
// index.
func PartitionPath(pattern string, index int) string {
	return strings.ReplaceAll(pattern, IndexPlaceholder, strconv.Itoa(index))
}

// BaseName returns the path of a dataset file without its extension and any
// compression suffix, such as "/data/rdns-0" for "/data/rdns-0.json.gz".
func BaseName(path string) string {
	for _, suffix := range compressionSuffixes {
		path = strings.TrimSuffix(path, suffix)
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// OutputPaths returns the paths of the located and unlocated result streams
// for the specified dataset file. If dir is non-empty, the result streams are
// placed in dir instead of alongside the dataset file.
func OutputPaths(path string, dir string) (located string, unlocated string) {
	base := BaseName(path)
	if dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	return base + "_found.json", base + "_not_found.json"
}

// Open opens the dataset file at path for reading, transparently
// decompressing gzip'ed and zstd'ed files. If no file exists at path, Open
// tries path with the compression suffixes appended.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		for _, suffix := range compressionSuffixes {
			if f, err2 := os.Open(path + suffix); err2 == nil {
				return decompress(f, suffix)
			}
		}
		return nil, err
	}
	return decompress(f, filepath.Ext(path))
}

func decompress(f *os.File, suffix string) (io.ReadCloser, error) {
	switch suffix {
	case ".gz":
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot decompress %s: %w", f.Name(), err)
		}
		return &readCloser{Reader: r, close: func() error {
			r.Close()
			return f.Close()
		}}, nil
	case ".zst":
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot decompress %s: %w", f.Name(), err)
		}
		return &readCloser{Reader: r, close: func() error {
			r.Close()
			return f.Close()
		}}, nil
	}
	return f, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }
