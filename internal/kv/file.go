package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const stateFileName = "state.json"

// File keeps every key in a single JSON document on disk. The whole document
// is rewritten on each Put using a temp-file-then-rename so a crash never
// leaves a half-written state file behind.
type File struct {
	dir string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// OpenFile loads dir/state.json, creating nothing until the first write.
// A state file that cannot be parsed is moved aside and the store starts
// empty.
func OpenFile(dir string) (*File, error) {
	f := &File{dir: dir, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", f.Path(), time.Now().Unix())
		slog.Warn("state file unreadable, starting fresh", "path", f.Path(), "moved_to", aside, "error", err)
		if rerr := os.Rename(f.Path(), aside); rerr != nil {
			return nil, fmt.Errorf("moving corrupt state aside: %w", rerr)
		}
		f.data = make(map[string]json.RawMessage)
	}
	if f.data == nil {
		f.data = make(map[string]json.RawMessage)
	}
	return f, nil
}

// Path returns the full path to the state file.
func (f *File) Path() string {
	return filepath.Join(f.dir, stateFileName)
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (f *File) Put(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("kv: value for %q is not valid JSON", key)
	}
	v := make(json.RawMessage, len(value))
	copy(v, value)

	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = v
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) Close() error { return nil }

// flush writes the document atomically. Callers hold f.mu.
func (f *File) flush() error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(f.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path()); err != nil {
		return fmt.Errorf("renaming state file: %w", err)
	}
	committed = true
	return nil
}
