// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package labelcache

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/thediveo/lxkns/log"
)

// LoadError reports a missing or corrupt cache file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load popular label cache %s: %s", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a cache from a JSON file. Failures are reported as *LoadError.
func Load(path string) (Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	var raw Cache
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&raw); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	c := make(Cache, len(raw))
	for key, e := range raw {
		c[Normalize(key)] = e
	}
	return c, nil
}

// LoadOrEmpty is like Load, but falls back to an empty cache in case the cache
// file is missing or corrupt.
func LoadOrEmpty(path string) Cache {
	c, err := Load(path)
	if err != nil {
		log.Warnf("%s, starting with empty cache", err)
		return Cache{}
	}
	return c
}

// Save writes the cache as JSON to the specified file, replacing any
// existing file.
func Save(path string, c Cache) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cannot save popular label cache: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(c); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot save popular label cache: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot save popular label cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot save popular label cache: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadPopularLabels reads a JSON array of label texts.
func LoadPopularLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load popular labels: %w", err)
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("cannot load popular labels from %s: %w", path, err)
	}
	return labels, nil
}

// SavePopularLabels writes the label texts as a JSON array.
func SavePopularLabels(path string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
