package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStorage struct {
	Storage
	client *gcs.Client
}

// ClientOptions turns credentials (inline JSON or a file path) into client options.
// Empty credentials fall back to application default credentials
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func NewGCSStorage(ctx context.Context, bucket *Bucket) (StorageAPI, error) {
	opts := append(ClientOptions(bucket.AuthDetails), option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	result := &GCSStorage{
		Storage: Storage{
			Bucket: *bucket,
		},
		client: client,
	}
	result.specifics = result
	return result, nil
}

func (s *GCSStorage) GetFullPath(path string) string {
	return localCopyPath(s.Bucket.LocalDir, path)
}

func (s *GCSStorage) EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0777)
}

func (s *GCSStorage) reader(ctx context.Context, bucket, key string) (*gcs.Reader, error) {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *GCSStorage) EnsureLocalFile(ctx context.Context, path string) error {
	r, err := s.reader(ctx, s.Bucket.Name, s.Bucket.GetRemotePath(path))
	if err != nil {
		return err
	}
	defer r.Close()
	return writeLocal(s.GetFullPath(path), r)
}

func (s *GCSStorage) ReleaseLocalFile(path string) {
	_ = s.removeLocal(path)
}

func (s *GCSStorage) write(ctx context.Context, key string, body io.Reader, mimeType string) error {
	w := s.client.Bucket(s.Bucket.Name).Object(key).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *GCSStorage) UpdateRemoteFile(ctx context.Context, path, mimeType string) error {
	data, err := os.Open(s.GetFullPath(path))
	if err != nil {
		return err
	}
	defer data.Close()
	return s.write(ctx, s.Bucket.GetRemotePath(path), data, mimeType)
}

func (s *GCSStorage) DeleteRemoteFile(ctx context.Context, path string) error {
	err := s.client.Bucket(s.Bucket.Name).Object(s.Bucket.GetRemotePath(path)).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *GCSStorage) PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error) {
	key := s.Bucket.GetRemotePath(path)
	if err := s.write(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return "", err
	}
	return "gs://" + s.Bucket.Name + "/" + key, nil
}

func (s *GCSStorage) ReadURI(ctx context.Context, uri string) ([]byte, error) {
	scheme, bucket, key, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	if scheme != "gs" {
		return nil, fmt.Errorf("gcs storage cannot read %q", uri)
	}
	r, err := s.reader(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
