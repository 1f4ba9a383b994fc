package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/atomicwriter"
)

// LocalPrefix is the URL path local objects are served under.
const LocalPrefix = "/uploads/"

// LocalStorage writes objects as files below a root directory.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

func (l *LocalStorage) Name() string { return "local" }

// Root is the directory served at LocalPrefix.
func (l *LocalStorage) Root() string { return l.root }

// resolve maps key to a path inside root, refusing anything that escapes it.
func (l *LocalStorage) resolve(key string) (string, string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	p := filepath.Join(l.root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", "", ErrInvalidKey
	}
	return p, cleaned, nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (ObjectInfo, error) {
	p, cleaned, err := l.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create dir: %w", err)
	}
	if err := writeStream(p, r); err != nil {
		return ObjectInfo{}, fmt.Errorf("write %s: %w", cleaned, err)
	}
	fi, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", cleaned, err)
	}
	return l.info(cleaned, fi, contentType), nil
}

// writeStream copies r into p through a temp file that replaces p only when
// the copy completes.
func writeStream(p string, r io.Reader) error {
	w, err := atomicwriter.New(p, 0o644)
	if err != nil {
		return err
	}
	n, err := io.Copy(w, r)
	if err != nil {
		// a failed read leaves the writer clean, so Close would still publish
		// the partial file
		_ = w.Close()
		_ = os.Remove(p)
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if n == 0 {
		return atomicwriter.WriteFile(p, nil, 0o644)
	}
	return nil
}

func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, cleaned, err := l.resolve(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("open %s: %w", cleaned, err)
	}
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}
	return f, l.info(cleaned, fi, ""), nil
}

// List returns the visible regular files directly below root.
func (l *LocalStorage) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("list upload dir: %w", err)
	}
	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		// in-flight writes live in hidden temp files
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, l.info(e.Name(), fi, ""))
	}
	return out, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	p, cleaned, err := l.resolve(key)
	if err != nil {
		return err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && fi.IsDir()) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", cleaned, err)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove %s: %w", cleaned, err)
	}
	return nil
}

func (l *LocalStorage) info(key string, fi fs.FileInfo, contentType string) ObjectInfo {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
	}
	return ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		ContentType:  contentType,
		LastModified: fi.ModTime(),
		URL:          LocalPrefix + key,
	}
}
