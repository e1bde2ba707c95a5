package kvstore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps each key in its own file under a directory, scoped to the
// client process's user.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("[NewFileStore] dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] mkdir")
	}
	return &FileStore{dir: dir}, nil
}

// Get implements Store.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "[FileStore.Get] %s", key)
	}
	return data, true, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, value []byte) error {
	if err := os.WriteFile(s.pathFor(key), value, 0o600); err != nil {
		return errors.Wrapf(err, "[FileStore.Set] %s", key)
	}
	return nil
}

// Remove implements Store.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "[FileStore.Remove] %s", key)
	}
	return nil
}

func (s *FileStore) pathFor(key string) string {
	// Keys are dotted identifiers; keep the filename flat.
	name := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".json")
}
