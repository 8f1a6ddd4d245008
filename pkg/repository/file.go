package repository

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// fileStore implements Store as a single JSON object file. The whole map
// is rewritten atomically on every Set via a temp file and rename.
type fileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFile creates a file-backed Store at the given path. A missing file
// means an empty store; the file is created on first Set.
func NewFile(path string) (Store, error) {
	if path == "" {
		return nil, goerr.New("store path is empty")
	}

	s := &fileStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, goerr.Wrap(err, "failed to read store file", goerr.V("path", path))
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, goerr.Wrap(err, "failed to parse store file", goerr.V("path", path))
	}
	return s, nil
}

func (s *fileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *fileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return goerr.Wrap(err, "failed to create store directory", goerr.V("dir", dir))
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".overleg-store-*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write store")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return goerr.Wrap(err, "failed to chmod store file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return goerr.Wrap(err, "failed to replace store file", goerr.V("path", s.path))
	}
	return nil
}
