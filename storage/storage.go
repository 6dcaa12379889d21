package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("remote object not found")

// StorageSpecificAPI is implemented per backend. Paths are object keys relative to the bucket
type StorageSpecificAPI interface {
	// GetFullPath returns the local path a remote object is cached at
	GetFullPath(path string) string
	EnsureDirExists(dir string) error
	// EnsureLocalFile downloads the remote object to GetFullPath(path). Returns ErrNotFound if missing
	EnsureLocalFile(ctx context.Context, path string) error
	ReleaseLocalFile(path string)
	// UpdateRemoteFile uploads the local copy over the remote object
	UpdateRemoteFile(ctx context.Context, path, mimeType string) error
	DeleteRemoteFile(ctx context.Context, path string) error
	// PutObject stores data remotely and returns its URI (gs://, s3:// or file://)
	PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error)
	// ReadURI reads an object referenced by URI, possibly from another bucket
	ReadURI(ctx context.Context, uri string) ([]byte, error)
}

type StorageAPI interface {
	StorageSpecificAPI
}

type Storage struct {
	specifics StorageSpecificAPI
	Bucket    Bucket
}

func NewStorage(ctx context.Context, bucket *Bucket) (StorageAPI, error) {
	if bucket.LocalDir != "" {
		if err := os.MkdirAll(bucket.LocalDir, 0777); err != nil {
			return nil, err
		}
	}
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket), nil
	case StorageTypeGCS:
		return NewGCSStorage(ctx, bucket)
	}
	return nil, fmt.Errorf("storage type %d unavailable for bucket %s", bucket.StorageType, bucket.Name)
}

// splitURI turns "gs://bucket/a/b" into ("gs", "bucket", "a/b")
func splitURI(uri string) (scheme, bucket, key string, err error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "", "", "", fmt.Errorf("not a storage URI: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", "", fmt.Errorf("storage URI without bucket or key: %q", uri)
	}
	return scheme, bucket, key, nil
}

// removeLocal drops the local copy of path, a missing copy is not an error
func (s *Storage) removeLocal(path string) error {
	err := os.Remove(s.GetFullPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

//
// Proxy methods
//

func (s *Storage) GetFullPath(path string) string {
	return s.specifics.GetFullPath(path)
}
func (s *Storage) EnsureDirExists(dir string) error {
	return s.specifics.EnsureDirExists(dir)
}
func (s *Storage) EnsureLocalFile(ctx context.Context, path string) error {
	return s.specifics.EnsureLocalFile(ctx, path)
}
func (s *Storage) ReleaseLocalFile(path string) {
	s.specifics.ReleaseLocalFile(path)
}
func (s *Storage) UpdateRemoteFile(ctx context.Context, path, mimeType string) error {
	return s.specifics.UpdateRemoteFile(ctx, path, mimeType)
}
func (s *Storage) DeleteRemoteFile(ctx context.Context, path string) error {
	return s.specifics.DeleteRemoteFile(ctx, path)
}
func (s *Storage) PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error) {
	return s.specifics.PutObject(ctx, path, data, mimeType)
}
func (s *Storage) ReadURI(ctx context.Context, uri string) ([]byte, error) {
	return s.specifics.ReadURI(ctx, uri)
}

// localCopyPath flattens an object key into a single file name under dir
func localCopyPath(dir, path string) string {
	return dir + "/" + strings.ReplaceAll(path, "/", "_")
}

// writeLocal streams r into a temp file next to dest and renames it into place
func writeLocal(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0777); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return err
	}
	if _, err = io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
