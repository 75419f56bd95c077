package storage

import (
	"context" // Context for MinIO calls
	"errors"  // Error construction
	"io"      // Streams
	"path"    // Object key joining
	"strings" // Input trimming

	"github.com/minio/minio-go/v7"                 // MinIO client
	"github.com/minio/minio-go/v7/pkg/credentials" // Static credentials
)

// MinioConfig holds the settings for the object storage backend
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps assets as objects named <folder>/<name> in one bucket
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore constructs a MinIO backed asset store
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (m *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// Save uploads the asset; size -1 streams with multipart upload
func (m *MinioStore) Save(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) error {
	key, err := objectKey(folder, name)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Open fetches the asset; a missing key yields ErrNotFound
func (m *MinioStore) Open(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return nil, ErrNotFound
	}
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
}

// Remove deletes the asset; MinIO treats missing keys as success
func (m *MinioStore) Remove(ctx context.Context, folder, name string) error {
	key, err := objectKey(folder, name)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func objectKey(folder, name string) (string, error) {
	if !ValidFolder(folder) {
		return "", errors.New("unknown asset folder " + folder)
	}
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", errors.New("invalid asset name " + name)
	}
	return path.Join(folder, name), nil
}
