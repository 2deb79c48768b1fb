// Package kv provides the string-keyed blob store that holds all persisted
// player state. Values are JSON documents; callers own their encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "code-arsenal"

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("kv: unknown backend")
)

// Store is a flat key-value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns a Store for the named backend rooted at dir. An empty dir
// selects DefaultDir.
func Open(backend, dir string) (Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	switch backend {
	case "", BackendFile:
		return OpenFile(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "arsenal.db"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// DefaultDir returns ~/.local/state/code-arsenal, respecting XDG_STATE_HOME
// if set.
func DefaultDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
