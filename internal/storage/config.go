package storage

import (
	"context"
	"fmt"

	"github.com/portfolio-site/portfolio-api/internal/config"
)

// Open returns the BlobStore selected by UPLOAD_DRIVER.
func Open(ctx context.Context, upload config.UploadConfig, minioCfg config.MinIOConfig) (BlobStore, error) {
	switch upload.Driver {
	case "local", "":
		return NewLocalStorage(upload.Dir)
	case "minio":
		return NewMinIOStorage(ctx, minioCfg)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", upload.Driver)
	}
}

// LocalRoot returns the directory to serve at /uploads/, or "" when
// objects are not on local disk.
func LocalRoot(s BlobStore) string {
	if l, ok := s.(*LocalStorage); ok {
		return l.Root()
	}
	return ""
}
