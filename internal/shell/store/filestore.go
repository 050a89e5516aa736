package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/artpar/stacksmith/internal/core/secrets"
)

// =============================================================================
// FileStore
// =============================================================================

// FileStore persists placeholder values in a single JSON document.
// Every write replaces the file atomically (write-new-then-rename), so
// a crash mid-run cannot corrupt previously resolved secrets.
type FileStore struct {
	path    string
	entries map[secrets.Key]string
}

// NewFileStore opens the store file at path, creating parent
// directories as needed. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		entries: make(map[secrets.Key]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, NewStoreError("NewFileStore", "", err.Error(), err)
	}

	var stored []secrets.Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, NewStoreError("NewFileStore", "", "cannot decode "+path, ErrInvalidData)
	}
	for _, e := range stored {
		s.entries[secrets.Key{Scope: e.Scope, Name: e.Name}] = e.Value
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key secrets.Key) (string, bool, error) {
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *FileStore) Put(_ context.Context, key secrets.Key, value string) error {
	s.entries[key] = value
	if err := s.save(); err != nil {
		return NewStoreError("Put", key.String(), err.Error(), ErrWriteFailed)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key secrets.Key) error {
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	if err := s.save(); err != nil {
		return NewStoreError("Delete", key.String(), err.Error(), ErrWriteFailed)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]secrets.Entry, error) {
	return s.sorted(), nil
}

func (s *FileStore) Close() error {
	return nil
}

// sorted returns all entries ordered by scope, then name.
func (s *FileStore) sorted() []secrets.Entry {
	entries := make([]secrets.Entry, 0, len(s.entries))
	for key, value := range s.entries {
		entries = append(entries, secrets.Entry{Scope: key.Scope, Name: key.Name, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Scope != entries[j].Scope {
			return entries[i].Scope < entries[j].Scope
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// save writes the store to a temporary file in the target directory
// and renames it into place.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.sorted(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".placeholders-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
