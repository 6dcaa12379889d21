package storage

import (
	"strings"

	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
	StorageTypeGCS  StorageType = 2
)

type Bucket struct {
	Name        string
	StorageType StorageType
	Path        string // Root directory for file buckets or a key prefix in S3/GCS
	LocalDir    string // Where local copies of remote objects are kept
	Region      string
	Endpoint    string
	AuthDetails string // S3: "key:secret", GCS: service account JSON or a path to it
}

func ParseStorageType(s string) StorageType {
	switch strings.ToLower(s) {
	case "s3":
		return StorageTypeS3
	case "file", "disk":
		return StorageTypeFile
	default:
		return StorageTypeGCS
	}
}

// StateBucket describes where the canonical state database lives
func StateBucket() *Bucket {
	return fromConfig(config.STATE_BUCKET, config.STATE_STORAGE_TYPE)
}

// MediaBucket is used for uploaded source images
func MediaBucket() *Bucket {
	b := fromConfig(config.IMAGE_BUCKET, config.STATE_STORAGE_TYPE)
	if b.StorageType != StorageTypeFile {
		b.Path = config.IMAGE_FOLDER
	}
	return b
}

func fromConfig(name, storageType string) *Bucket {
	b := &Bucket{
		Name:        name,
		StorageType: ParseStorageType(storageType),
		LocalDir:    config.TMP_DIR,
		Region:      config.S3_REGION,
		Endpoint:    config.S3_ENDPOINT,
	}
	switch b.StorageType {
	case StorageTypeFile:
		b.Path = config.STATE_DIR
	case StorageTypeS3:
		b.AuthDetails = config.S3_KEY + ":" + config.S3_SECRET
	case StorageTypeGCS:
		b.AuthDetails = config.GCP_CREDENTIALS
	}
	return b
}

func (b *Bucket) GetRemotePath(path string) string {
	if b.Path == "" {
		return path
	}
	return strings.TrimSuffix(b.Path, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (b *Bucket) CreateSVC() *s3.S3 {
	cfg := &aws.Config{
		Region: aws.String(b.Region),
	}
	if b.Endpoint != "" {
		cfg.Endpoint = aws.String(b.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if key, secret, ok := strings.Cut(b.AuthDetails, ":"); ok && key != "" {
		cfg.Credentials = credentials.NewStaticCredentials(key, secret, "")
	}
	return s3.New(session.Must(session.NewSession(cfg)))
}
