package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is a string-keyed byte store, the shape of browser local storage.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileKV keeps all keys in one JSON object file. Human-readable, portable.
// No cross-process locking; fine for a single-user client.
type FileKV struct {
	path string
}

func NewFileKV(path string) *FileKV { return &FileKV{path: path} }

func (f *FileKV) Path() string { return f.path }

func (f *FileKV) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		// The empty map lets Set overwrite the file.
		return map[string]string{}, fmt.Errorf("%w: %s: %v", ErrMalformedSession, f.path, err)
	}
	return m, nil
}

func (f *FileKV) remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (f *FileKV) save(m map[string]string) error {
	// ensure the directory exists with 0700
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	// write with 0600 (owner-only)
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	m, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	m, err := f.load()
	if err != nil && !errors.Is(err, ErrMalformedSession) {
		return err
	}
	m[key] = string(value)
	return f.save(m)
}

// Delete drops key. A file that is not a JSON object holds nothing worth
// keeping and is removed.
func (f *FileKV) Delete(key string) error {
	m, err := f.load()
	if errors.Is(err, ErrMalformedSession) {
		return f.remove()
	}
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	if len(m) == 0 {
		return f.remove()
	}
	return f.save(m)
}

// MemKV is an in-process KV for tests and ephemeral sessions.
type MemKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemKV() *MemKV { return &MemKV{m: map[string][]byte{}} }

func (k *MemKV) Get(key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *MemKV) Set(key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = append([]byte(nil), value...)
	return nil
}

func (k *MemKV) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}
