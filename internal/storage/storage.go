// Package storage holds the object stores uploaded files are written to.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	// URL is where visitors fetch the object: a /uploads/ path for the local
	// store, an absolute URL for remote stores.
	URL string
}

// BlobStore is the upload destination chosen at startup.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// Remote is implemented by stores whose objects are served from outside this
// process. Their URLs are absolute and recorded as-is in the content.
type Remote interface {
	Remote() bool
}

// IsRemote reports whether s serves its objects itself.
func IsRemote(s BlobStore) bool {
	r, ok := s.(Remote)
	return ok && r.Remote()
}

// CleanKey normalizes a client-supplied object name and rejects anything
// that would resolve outside the store root.
func CleanKey(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "\\\x00") || path.IsAbs(name) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
