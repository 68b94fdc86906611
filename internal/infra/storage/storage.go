// Package storage archives original uploads in object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/lexilens/internal/config"
	"github.com/bryanwahyu/lexilens/internal/domain/documents"
)

// New returns the configured archive, or nil when storage.driver is none.
func New(ctx context.Context, cfg config.Storage) (documents.ArchiveStore, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "minio":
		st, err := NewMinio(ctx, cfg.Minio, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "s3":
		st, err := NewS3(ctx, cfg.S3, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func objectKey(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// mimeType sederhana
func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
