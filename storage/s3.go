package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Storage struct {
	Storage
	s3Client *s3.S3
}

func NewS3Storage(bucket *Bucket) StorageAPI {
	result := &S3Storage{
		Storage: Storage{
			Bucket: *bucket,
		},
		s3Client: bucket.CreateSVC(),
	}
	result.specifics = result
	return result
}

// GetFullPath returns local temp path in case of S3
func (s *S3Storage) GetFullPath(path string) string {
	return localCopyPath(s.Bucket.LocalDir, path)
}

func (s *S3Storage) EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0777)
}

func isNoSuchKey(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}

// EnsureLocalFile downloads a S3 object locally
func (s *S3Storage) EnsureLocalFile(ctx context.Context, path string) error {
	data, err := s.getObject(ctx, s.Bucket.Name, s.Bucket.GetRemotePath(path))
	if err != nil {
		return err
	}
	defer data.Close()
	return writeLocal(s.GetFullPath(path), data)
}

func (s *S3Storage) getObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if isNoSuchKey(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *S3Storage) ReleaseLocalFile(path string) {
	_ = s.removeLocal(path)
}

// UpdateRemoteFile updates the remote S3 object (uploads the local copy)
func (s *S3Storage) UpdateRemoteFile(ctx context.Context, path, mimeType string) error {
	data, err := os.Open(s.GetFullPath(path))
	if err != nil {
		return err
	}
	defer data.Close()
	return s.upload(ctx, s.Bucket.GetRemotePath(path), data, mimeType)
}

func (s *S3Storage) upload(ctx context.Context, key string, body io.Reader, mimeType string) error {
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      &s.Bucket.Name,
		Key:         aws.String(key),
		ContentType: &mimeType,
		Body:        body,
	})
	return err
}

func (s *S3Storage) DeleteRemoteFile(ctx context.Context, path string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(path)),
	})
	return err
}

func (s *S3Storage) PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error) {
	key := s.Bucket.GetRemotePath(path)
	if err := s.upload(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return "", err
	}
	return "s3://" + s.Bucket.Name + "/" + key, nil
}

func (s *S3Storage) ReadURI(ctx context.Context, uri string) ([]byte, error) {
	scheme, bucket, key, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	if scheme != "s3" {
		return nil, fmt.Errorf("s3 storage cannot read %q", uri)
	}
	body, err := s.getObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}
