package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	storeFilePerm = 0600
	storeDirPerm  = 0700
)

// FileStore keeps all entries in a single JSON file. Every write replaces the
// file through a synced temp file and a rename, so a crash leaves either the
// old or the new contents on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string][]byte
}

// NewFileStore opens the store at path, creating it on first write.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		data: make(map[string][]byte),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	fileData, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(fileData) == 0 {
		return nil
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	// []byte values are base64 encoded in JSON
	if err := json.Unmarshal(fileData, &s.data); err != nil {
		return fmt.Errorf("failed to unmarshal store file: %w", err)
	}
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

func (s *FileStore) SetMany(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string][]byte, len(s.data)+len(values))
	for k, v := range s.data {
		next[k] = v
	}
	for k, v := range values {
		next[k] = append([]byte(nil), v...)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *FileStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		next[k] = v
	}
	for _, k := range keys {
		delete(next, k)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *FileStore) write(data map[string][]byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirPerm); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	fileData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := tmp.Chmod(storeFilePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set store permissions: %w", err)
	}
	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return syncDir(dir)
}

// syncDir flushes the directory entry so the rename survives a power loss.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open store directory: %w", err)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return fmt.Errorf("failed to sync store directory: %w", err)
	}
	return d.Close()
}
