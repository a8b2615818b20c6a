package checkpointer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var streamName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// cursorFile is the on-disk form of a cursor.
type cursorFile struct {
	Stream    string `json:"stream"`
	Next      uint64 `json:"next"`
	Timestamp int64  `json:"timestamp"`
}

// File stores one JSON cursor file per stream in a directory.
type File struct {
	dir string
}

// NewFile creates a file-backed Checkpointer rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("invalid checkpoint directory: must not be empty")
	}
	return &File{dir: dir}, nil
}

func (f *File) path(stream string) (string, error) {
	if !streamName.MatchString(stream) {
		return "", fmt.Errorf("invalid stream name %q", stream)
	}
	return filepath.Join(f.dir, stream+".cursor.json"), nil
}

// Initialize creates the directory.
func (f *File) Initialize(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	return nil
}

// Write replaces the cursor file via a temp file and rename.
func (f *File) Write(ctx context.Context, stream string, next uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(stream)
	if err != nil {
		return err
	}
	b, err := json.Marshal(cursorFile{Stream: stream, Next: next, Timestamp: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+stream+"-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// Read returns the cursor for stream.
func (f *File) Read(_ context.Context, stream string) (uint64, bool, error) {
	path, err := f.path(stream)
	if err != nil {
		return 0, false, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}
	var c cursorFile
	if err := json.Unmarshal(b, &c); err != nil {
		return 0, false, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	return c.Next, true, nil
}

// Delete removes the cursor file for stream.
func (f *File) Delete(_ context.Context, stream string) error {
	path, err := f.path(stream)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

var _ Checkpointer = (*File)(nil)
