// Package upload validates, names and stores uploaded images and CVs.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/internal/storage"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

const (
	KindImage = "image"
	KindCV    = "cv"

	DefaultMaxSize = 10 << 20
	sniffLen       = 3072
)

var imageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

var cvTypes = map[string][]string{
	"application/pdf": {".pdf"},
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// File is one uploaded part as received from the client.
type File struct {
	Name        string // original client filename
	ContentType string // declared MIME type
	Size        int64
	Content     io.Reader
}

// Result describes a stored upload.
type Result struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// CV is the latest CV: either a URL to redirect to or a stream to send.
type CV struct {
	RedirectURL string
	Content     io.ReadCloser
	Size        int64
	Filename    string
}

type Service struct {
	store        storage.BlobStore
	docs         *repository.Guard
	maxImageSize int64
	maxCVSize    int64

	mu     sync.Mutex
	lastMs int64
	now    func() time.Time
}

func NewService(store storage.BlobStore, docs *repository.Guard, maxImageSize, maxCVSize int64) *Service {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxSize
	}
	if maxCVSize <= 0 {
		maxCVSize = DefaultMaxSize
	}
	return &Service{store: store, docs: docs, maxImageSize: maxImageSize, maxCVSize: maxCVSize, now: time.Now}
}

// WithClock replaces the time source used for filenames; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UploadImage stores exactly one JPEG, PNG, GIF or WebP image.
func (s *Service) UploadImage(ctx context.Context, files []File) (*Result, error) {
	res, err := s.put(ctx, files, imageTypes, s.maxImageSize, "Only image files (JPEG, PNG, GIF, WebP) are allowed")
	record(KindImage, err)
	return res, err
}

// UploadCV stores exactly one PDF. On local disk every other PDF is removed
// so a single CV is kept; remote stores keep history and publish the object
// URL as content.cvUrl instead.
func (s *Service) UploadCV(ctx context.Context, files []File) (*Result, error) {
	res, err := s.put(ctx, files, cvTypes, s.maxCVSize, "Only PDF files are allowed for CV uploads")
	record(KindCV, err)
	if err != nil {
		return nil, err
	}

	remote := storage.IsRemote(s.store)
	if !remote {
		s.pruneCVs(ctx, res.Filename)
	}

	err = s.docs.Update(ctx, func(doc *portfolio.Document) error {
		cur := doc.Content.CVURL
		switch {
		case remote:
			doc.Content.CVURL = res.URL
		case strings.HasPrefix(cur, storage.LocalPrefix):
			doc.Content.CVURL = res.URL
		default:
			return errUnchanged
		}
		doc.Touch("admin", s.docs.Now())
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		// the file is stored; only the pointer is stale
		logger.Errorf("upload cv: record cv url: %v", err)
	}
	return res, nil
}

var errUnchanged = errors.New("unchanged")

func (s *Service) pruneCVs(ctx context.Context, keep string) {
	objs, err := s.store.List(ctx)
	if err != nil {
		logger.Warnf("upload cv: list old CVs: %v", err)
		return
	}
	for _, o := range objs {
		if o.Key == keep || !strings.EqualFold(filepath.Ext(o.Key), ".pdf") {
			continue
		}
		if err := s.store.Delete(ctx, o.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("upload cv: delete old CV %s: %v", o.Key, err)
			continue
		}
		logger.Infof("deleted old CV: %s", o.Key)
	}
}

// DeleteFile removes a stored upload by name.
func (s *Service) DeleteFile(ctx context.Context, name string) error {
	if _, err := storage.CleanKey(name); err != nil {
		return apperror.Forbidden("Invalid file path")
	}
	err := s.store.Delete(ctx, name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrInvalidKey):
		return apperror.Forbidden("Invalid file path")
	case errors.Is(err, storage.ErrNotFound):
		return apperror.NotFound("File", "")
	default:
		return fmt.Errorf("delete file: %w", err)
	}
}

// LatestCV resolves the CV to serve. An absolute cvUrl wins; otherwise the
// stored PDF with the newest timestamp suffix is opened.
func (s *Service) LatestCV(ctx context.Context) (*CV, error) {
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest cv: %w", err)
	}
	if u := doc.Content.CVURL; strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return &CV{RedirectURL: u}, nil
	}

	objs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest cv: %w", err)
	}
	var pdfs []storage.ObjectInfo
	for _, o := range objs {
		if strings.EqualFold(filepath.Ext(o.Key), ".pdf") {
			pdfs = append(pdfs, o)
		}
	}
	if len(pdfs) == 0 {
		return nil, apperror.NotFound("CV", "")
	}
	sort.SliceStable(pdfs, func(i, j int) bool {
		ti, tj := nameTimestamp(pdfs[i].Key), nameTimestamp(pdfs[j].Key)
		if ti != tj {
			return ti > tj
		}
		return pdfs[i].LastModified.After(pdfs[j].LastModified)
	})

	rc, info, err := s.store.Open(ctx, pdfs[0].Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound("CV", "")
	}
	if err != nil {
		return nil, fmt.Errorf("latest cv: %w", err)
	}
	return &CV{Content: rc, Size: info.Size, Filename: "Resume.pdf"}, nil
}

func (s *Service) put(ctx context.Context, files []File, allowed map[string][]string, limit int64, typeMsg string) (*Result, error) {
	if len(files) == 0 {
		return nil, apperror.Invalid("file", "No file uploaded")
	}
	if len(files) > 1 {
		return nil, apperror.Invalid("file", "Only one file may be uploaded per request")
	}
	f := files[0]
	if f.Size > limit {
		return nil, apperror.PayloadTooLarge(limit)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	ext := strings.ToLower(filepath.Ext(f.Name))
	exts, ok := allowed[declared]
	if !ok || !contains(exts, ext) {
		return nil, apperror.UnsupportedMediaType(typeMsg)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.Invalid("file", "Uploaded file is empty")
	}
	if !mimetype.Detect(head).Is(declared) {
		return nil, apperror.UnsupportedMediaType("File content does not match its declared type")
	}

	name := s.filename(f.Name, ext)
	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), f.Content), remaining: limit}
	info, err := s.store.Put(ctx, name, body, f.Size, declared)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return nil, apperror.PayloadTooLarge(limit)
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &Result{Filename: info.Key, URL: info.URL, Size: info.Size}, nil
}

// filename builds "<sanitized base>-<ms timestamp><ext>". Timestamps are
// strictly increasing within the process so names never collide.
func (s *Service) filename(original, ext string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	safe := unsafeName.ReplaceAllString(base, "-")
	if safe == "" {
		safe = "file"
	}
	s.mu.Lock()
	ms := s.now().UnixMilli()
	if ms <= s.lastMs {
		ms = s.lastMs + 1
	}
	s.lastMs = ms
	s.mu.Unlock()
	return safe + "-" + strconv.FormatInt(ms, 10) + ext
}

func nameTimestamp(key string) int64 {
	stem := strings.TrimSuffix(key, filepath.Ext(key))
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return 0
	}
	ts, err := strconv.ParseInt(stem[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var errTooLarge = errors.New("upload exceeds size limit")

// limitedReader fails once more than remaining bytes are read, so a client
// cannot understate the part size.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}

func record(kind string, err error) {
	outcome := "ok"
	var appErr *apperror.AppError
	switch {
	case err == nil:
	case errors.As(err, &appErr):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.Uploads.WithLabelValues(kind, outcome).Inc()
}
