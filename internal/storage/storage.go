package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/bizdash-go/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations used for report exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// New builds the client selected by cfg.Driver; minio is the default.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMinio:
		return NewMinioClient(cfg)
	case DriverS3:
		return NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectKey joins the configured prefix and a file name.
func ObjectKey(prefix, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func validate(cfg config.StorageConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("storage bucket must be provided")
	}
	return nil
}

func region(cfg config.StorageConfig) string {
	if r := strings.TrimSpace(cfg.Region); r != "" {
		return r
	}
	return "us-east-1"
}

// FetchWorkbook downloads a stored .xlsx snapshot into dir and returns its
// local path, ready for sheets.OpenWorkbook.
func FetchWorkbook(ctx context.Context, store ObjectStorage, key, dir string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("snapshot key must be provided")
	}
	if !strings.EqualFold(path.Ext(key), ".xlsx") {
		return "", fmt.Errorf("snapshot %q is not an .xlsx workbook", key)
	}

	dest := filepath.Join(dir, path.Base(key))
	if err := store.DownloadObject(ctx, key, dest); err != nil {
		return "", err
	}
	return dest, nil
}
