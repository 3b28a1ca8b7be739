package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"taskdeck/pkg/logger"
)

// File stores each key as one file under a directory. This is the CLI's
// local-storage analogue. All failures degrade to "no data"; a cache that
// cannot be read is simply cold.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a file-backed store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	// Keys are fixed identifiers, but keep them path-safe anyway.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(f.dir, safe+".json")
}

// Read returns the stored value for key, or ("", false) when absent.
func (f *File) Read(key string) (string, bool) {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Write stores the value, replacing any previous one. Write failures are
// logged and dropped; the in-memory state stays authoritative.
func (f *File) Write(key, value string) {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		logger.Warn(context.Background(), "Snapshot write failed", "error", err, "key", key)
		return
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		logger.Warn(context.Background(), "Snapshot rename failed", "error", err, "key", key)
	}
}

// Clear erases the value stored under key.
func (f *File) Clear(key string) {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		logger.Warn(context.Background(), "Snapshot clear failed", "error", err, "key", key)
	}
}
