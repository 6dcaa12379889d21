package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DiskStorage treats a directory (usually a mounted network drive) as the remote side.
// Local copies are kept separately under Bucket.LocalDir
type DiskStorage struct {
	Storage
	// BasePath is a directory that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(bucket *Bucket) StorageAPI {
	result := &DiskStorage{
		BasePath: bucket.Path,
		Storage: Storage{
			Bucket: *bucket,
		},
		dirs: make(map[string]bool, 10),
	}
	result.specifics = result
	return result
}

func (s *DiskStorage) EnsureDirExists(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) remotePath(path string) string {
	return filepath.Join(s.BasePath, path)
}

func (s *DiskStorage) GetFullPath(path string) string {
	return localCopyPath(s.Bucket.LocalDir, path)
}

func (s *DiskStorage) EnsureLocalFile(ctx context.Context, path string) error {
	file, err := os.Open(s.remotePath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	defer file.Close()
	return writeLocal(s.GetFullPath(path), file)
}

func (s *DiskStorage) ReleaseLocalFile(path string) {
	_ = s.removeLocal(path)
}

func (s *DiskStorage) UpdateRemoteFile(ctx context.Context, path, mimeType string) error {
	file, err := os.Open(s.GetFullPath(path))
	if err != nil {
		return err
	}
	defer file.Close()
	dest := s.remotePath(path)
	if err = s.EnsureDirExists(filepath.Dir(dest)); err != nil {
		return err
	}
	return writeLocal(dest, file)
}

func (s *DiskStorage) DeleteRemoteFile(ctx context.Context, path string) error {
	return os.Remove(s.remotePath(path))
}

func (s *DiskStorage) PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error) {
	dest := s.remotePath(path)
	if err := s.EnsureDirExists(filepath.Dir(dest)); err != nil {
		return "", err
	}
	if err := writeLocal(dest, bytes.NewReader(data)); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}

// ReadURI accepts file:// URIs only
func (s *DiskStorage) ReadURI(ctx context.Context, uri string) ([]byte, error) {
	const prefix = "file://"
	if len(uri) <= len(prefix) || uri[:len(prefix)] != prefix {
		return nil, fmt.Errorf("disk storage cannot read %q", uri)
	}
	data, err := os.ReadFile(uri[len(prefix):])
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}
