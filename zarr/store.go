package zarr

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

// Store is a flat key/value namespace with "/"-separated keys.
type Store interface {
	// Get returns the value of key, or errs.ErrKeyNotFound.
	Get(key string) ([]byte, error)
	// Set creates or replaces key.
	Set(key string, value []byte) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(key string) error
	// List returns all keys starting with prefix, sorted.
	List(prefix string) ([]string, error)
}

// MemoryStore keeps keys in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, errors.Wrapf(errs.ErrKeyNotFound, "%q", key)
	}

	return slices.Clone(v), nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(value)

	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *MemoryStore) List(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	return keys, nil
}

// Len returns the number of keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// DirectoryStore maps keys to files below a root directory.
// It does no locking; a single writer is assumed.
type DirectoryStore struct {
	Root string
}

var _ Store = DirectoryStore{}

func NewDirectoryStore(root string) DirectoryStore {
	return DirectoryStore{Root: root}
}

func (s DirectoryStore) path(key string) string {
	return filepath.Join(s.Root, filepath.FromSlash(key))
}

func (s DirectoryStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(errs.ErrKeyNotFound, "%q", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", key)
	}

	return data, nil
}

func (s DirectoryStore) Set(key string, value []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %q", key)
	}
	if err := os.WriteFile(p, value, 0o644); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}

	return nil
}

func (s DirectoryStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "delete %q", key)
	}

	return nil
}

func (s DirectoryStore) List(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == s.Root {
				return fs.SkipAll
			}

			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", s.Root)
	}
	slices.Sort(keys)

	return keys, nil
}

// hasKey reports whether key exists in store.
func hasKey(store Store, key string) (bool, error) {
	_, err := store.Get(key)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// deletePrefix removes every key starting with prefix.
func deletePrefix(store Store, prefix string) error {
	keys, err := store.List(prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := store.Delete(k); err != nil {
			return err
		}
	}

	return nil
}
