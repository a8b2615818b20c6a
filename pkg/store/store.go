// Package store stages checkpoint blobs on disk, one file per sequence number.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ErrNotFound is returned by Get when no blob is staged for a sequence number.
var ErrNotFound = errors.New("checkpoint not staged")

// IOError reports a staging read or write failure for one sequence number.
type IOError struct {
	Op       string
	Sequence uint64
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s checkpoint %d: %v", e.Op, e.Sequence, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

const tmpPrefix = ".tmp-"

// Store is a directory of <sequence>.<ext> files. Distinct sequence numbers never
// share a file, so concurrent Puts for different sequences need no locking.
type Store struct {
	dir     string
	ext     string
	syncDir func(dir string) error
}

// New returns a Store rooted at dir, creating it and its parents if needed.
// ext is the file extension without the leading dot.
func New(dir, ext string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("invalid staging dir: must not be empty")
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return nil, errors.New("invalid extension: must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir %s: %w", dir, err)
	}
	return &Store{dir: dir, ext: ext, syncDir: syncDir}, nil
}

// syncDir flushes dir's entries so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// Dir returns the staging directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for seq.
func (s *Store) Path(seq uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(seq, 10)+"."+s.ext)
}

// Put stages b for seq. The bytes land in a temp file that is synced and renamed
// over the final name, so readers see either the previous file or the complete
// new one; the directory is synced after the rename. Repeating a Put with the
// same bytes leaves the same file.
func (s *Store) Put(ctx context.Context, seq uint64, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// The directory may have been removed underneath us since New.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &IOError{Op: "put", Sequence: seq, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+strconv.FormatUint(seq, 10)+"-*")
	if err != nil {
		return &IOError{Op: "put", Sequence: seq, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &IOError{Op: "put", Sequence: seq, Err: err}
	}

	if _, err := tmp.Write(b); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmpName, s.Path(seq)); err != nil {
		_ = os.Remove(tmpName)
		return &IOError{Op: "put", Sequence: seq, Err: err}
	}
	if err := s.syncDir(s.dir); err != nil {
		return &IOError{Op: "put", Sequence: seq, Err: fmt.Errorf("sync dir: %w", err)}
	}
	return nil
}

// Get returns the staged bytes for seq, or an error wrapping ErrNotFound.
func (s *Store) Get(seq uint64) ([]byte, error) {
	b, err := os.ReadFile(s.Path(seq))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &IOError{Op: "get", Sequence: seq, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &IOError{Op: "get", Sequence: seq, Err: err}
	}
	return b, nil
}

// Remove deletes the staged file for seq. Removing a missing file is not an error.
func (s *Store) Remove(seq uint64) error {
	if err := os.Remove(s.Path(seq)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "remove", Sequence: seq, Err: err}
	}
	return nil
}

// List returns the staged sequence numbers in ascending order. Temp files and
// names that are not <uint64>.<ext> are ignored.
func (s *Store) List() ([]uint64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	suffix := "." + s.ext
	seqs := make([]uint64, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tmpPrefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, suffix), 10, 64)
		if err != nil {
			continue
		}
		seqs = append(seqs, seq)
	}
	slices.Sort(seqs)
	return seqs, nil
}

// Highest returns the largest staged sequence number; ok is false when nothing is staged.
func (s *Store) Highest() (seq uint64, ok bool, err error) {
	seqs, err := s.List()
	if err != nil || len(seqs) == 0 {
		return 0, false, err
	}
	return seqs[len(seqs)-1], true, nil
}
