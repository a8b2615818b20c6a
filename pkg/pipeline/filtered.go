package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
)

// WriteFiltered writes fts to path as an indented JSON array, replacing any
// previous file atomically. An empty selection is written as [].
func WriteFiltered(path string, fts []filter.FilteredTransaction) error {
	if fts == nil {
		fts = []filter.FilteredTransaction{}
	}
	b, err := json.MarshalIndent(fts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode filtered transactions: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFiltered reads a file written by WriteFiltered.
func ReadFiltered(path string) ([]filter.FilteredTransaction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filtered transactions: %w", err)
	}
	var fts []filter.FilteredTransaction
	if err := json.Unmarshal(b, &fts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fts, nil
}
