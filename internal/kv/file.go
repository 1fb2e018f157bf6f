package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskpad/internal/fsutil"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// FileStore keeps each key as one JSON file inside a data directory.
// Writes go through a temp-file rename with a best-effort .bak copy of
// the previous contents, matching the durability the rest of the app
// expects from the snapshot key.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory path.
func (f *FileStore) Dir() string {
	return f.dir
}

// Path returns the file a key is stored at. The cross-instance watcher
// uses this to scope change notifications to the snapshot key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// Get reads the value for key, reporting absence without error.
func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes the value for key atomically, backing up the previous value.
func (f *FileStore) Set(key string, value []byte) error {
	path := f.Path(key)
	fsutil.BestEffortBackup(path, dataFilePerm)
	if err := fsutil.WriteFileAtomic(path, value, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the value for key. Absent keys are a no-op.
func (f *FileStore) Delete(key string) error {
	if err := os.Remove(f.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// sanitizeKey keeps keys safe to use as file names.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return r.Replace(key)
}
