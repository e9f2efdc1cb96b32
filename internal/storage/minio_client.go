package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"hrcms/internal/config"
)

type Storage interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectName string, file io.Reader, size int64, contentType string, meta map[string]string) (string, error)
}

var _ Storage = (*MinIOClient)(nil)

type MinIOClient struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOClient connects to the object store and creates the bucket if needed.
func NewMinIOClient(ctx context.Context, cfg config.MinIO, logger *zap.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %s", cfg.BucketName)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", cfg.BucketName)
		}
		logger.Info("created bucket", zap.String("bucket", cfg.BucketName))
	}

	return &MinIOClient{
		client:  client,
		bucket:  cfg.BucketName,
		baseURL: publicBaseURL(cfg),
	}, nil
}

// publicBaseURL is the prefix of object links: the configured public URL,
// or the endpoint plus bucket path.
func publicBaseURL(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.BucketName
}

func (m *MinIOClient) Upload(ctx context.Context, objectName string, file io.Reader, size int64, contentType string, meta map[string]string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: meta,
		})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", objectName)
	}

	return m.URL(objectName), nil
}

func (m *MinIOClient) URL(objectName string) string {
	return objectURL(m.baseURL, objectName)
}

func objectURL(base, objectName string) string {
	parts := strings.Split(objectName, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return base + "/" + strings.Join(parts, "/")
}
