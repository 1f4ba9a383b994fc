package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-api/internal/config"
)

func TestCleanKey(t *testing.T) {
	valid := map[string]string{
		"photo-1700000000000.png": "photo-1700000000000.png",
		"images/a.png":            "images/a.png",
		"a/../b.pdf":              "b.pdf",
	}
	for in, want := range valid {
		got, err := CleanKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", ".", "..", "../etc/passwd", "/etc/passwd", "a/../../b", `..\windows`, "x\x00.png"} {
		_, err := CleanKey(in)
		assert.True(t, errors.Is(err, ErrInvalidKey), "expected %q to be rejected", in)
	}
}

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	info, err := s.Put(ctx, "cv-1.pdf", strings.NewReader("%PDF-1.4 test"), 13, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cv-1.pdf", info.URL)
	assert.Equal(t, int64(13), info.Size)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cv-1.pdf", list[0].Key)

	rc, oi, err := s.Open(ctx, "cv-1.pdf")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4 test", string(b))
	assert.Equal(t, "application/pdf", oi.ContentType)

	require.NoError(t, s.Delete(ctx, "cv-1.pdf"))
	assert.True(t, errors.Is(s.Delete(ctx, "cv-1.pdf"), ErrNotFound))
	_, _, err = s.Open(ctx, "cv-1.pdf")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorageRefusesEscape(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	s, err := NewLocalStorage(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	assert.True(t, errors.Is(s.Delete(ctx, "../secret.txt"), ErrInvalidKey))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "file outside root must survive")

	_, err = s.Put(ctx, "../evil.png", strings.NewReader("x"), 1, "image/png")
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestRemoteCapability(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.False(t, IsRemote(local))
	assert.True(t, IsRemote(&MinIOStorage{}))
}

func TestMinIOURL(t *testing.T) {
	s := &MinIOStorage{publicURL: publicBase(config.MinIOConfig{Endpoint: "s3.example.com", Bucket: "portfolio", UseSSL: true})}
	assert.Equal(t, "https://s3.example.com/portfolio/cv-1.pdf", s.URL("cv-1.pdf"))

	s = &MinIOStorage{publicURL: publicBase(config.MinIOConfig{Endpoint: "minio:9000", Bucket: "b", PublicURL: "https://cdn.example.com/"})}
	assert.Equal(t, "https://cdn.example.com/my%20file.png", s.URL("my file.png"))
}

// chunkReader yields chunks of n bytes and records, before each later chunk,
// how many bytes have already reached the temp file in dir.
type chunkReader struct {
	dir      string
	chunk    []byte
	left     int
	onDisk   []int64
	failWith error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.left == 0 {
		if c.failWith != nil {
			return 0, c.failWith
		}
		return 0, io.EOF
	}
	matches, _ := filepath.Glob(filepath.Join(c.dir, ".tmp-*"))
	var size int64
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil {
			size += fi.Size()
		}
	}
	c.onDisk = append(c.onDisk, size)
	c.left--
	return copy(p, c.chunk), nil
}

func TestLocalStoragePutStreamsToDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	r := &chunkReader{dir: dir, chunk: make([]byte, 32<<10), left: 8}
	info, err := s.Put(context.Background(), "big-1.png", r, 8*32<<10, "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(8*32<<10), info.Size)

	// earlier chunks were already written out while later ones were read
	require.Len(t, r.onDisk, 8)
	assert.Equal(t, int64(0), r.onDisk[0])
	assert.Equal(t, int64(7*32<<10), r.onDisk[7])

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLocalStoragePutFailedReadLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	r := &chunkReader{dir: dir, chunk: make([]byte, 1024), left: 2, failWith: errors.New("client went away")}
	_, err = s.Put(context.Background(), "half-1.pdf", r, 4096, "application/pdf")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
