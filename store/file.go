package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"school-equipment-lending-system/models"
)

// File persists the whole keyspace as one JSON document, rewritten on every
// Set/Delete. It is the local-storage analog: small, synchronous, one writer.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrStorage, path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.data); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", models.ErrStorage, path, err)
		}
	}
	return f, nil
}

func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !json.Valid(value) {
		return fmt.Errorf("%w: value for %q is not valid JSON", models.ErrStorage, key)
	}
	f.data[key] = json.RawMessage(value)
	return f.flush()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return f.flush()
}

func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", models.ErrStorage, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", models.ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", models.ErrStorage, tmp, err)
	}
	return nil
}
