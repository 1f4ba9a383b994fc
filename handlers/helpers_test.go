package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-site/portfolio-api/internal/auth"
	"github.com/portfolio-site/portfolio-api/internal/mail"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/service"
	"github.com/portfolio-site/portfolio-api/internal/storage"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
	"github.com/portfolio-site/portfolio-api/internal/upload"
	"github.com/portfolio-site/portfolio-api/pkg/middleware"
)

const testPassword = "Correct#Horse1"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Name() string { return "fake" }

type testEnv struct {
	engine *gin.Engine
	store  *repository.MemoryStore
	blobs  *storage.LocalStorage
	mailer *fakeMailer
	authn  *auth.Service
}

func newEnv(t *testing.T, production bool) *testEnv {
	t.Helper()
	passwords := auth.NewPasswords(bcrypt.MinCost)
	hash, err := passwords.Hash(testPassword)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	docs := repository.NewGuard(store, hash)
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	mailer := &fakeMailer{}

	env := &testEnv{
		store:  store,
		blobs:  blobs,
		mailer: mailer,
		authn:  auth.NewService(docs, passwords, tokens.NewManager("handler-test-secret-0123456789", 24*time.Hour)),
	}
	errs := Errors{Production: production}
	uploads := upload.NewService(blobs, docs, 0, 0)

	g := gin.New()
	admin := middleware.AuthMiddleware(env.authn)

	ah := NewAuthHandler(env.authn, errs)
	g.POST("/auth/login", ah.Login)
	g.GET("/auth/verify", admin, ah.Verify)
	g.POST("/auth/change-password", admin, ah.ChangePassword)

	ch := NewContentHandler(service.NewContentService(docs, "https://api.example.com"), errs)
	g.GET("/content", ch.Get)
	g.PUT("/content", admin, ch.Update)
	g.GET("/content/submissions", admin, ch.Submissions)
	g.DELETE("/content/submissions/:id", admin, ch.DeleteSubmission)

	sh := NewContactHandler(service.NewSubmissionService(docs, mailer, "site@example.com", "owner@example.com", time.Second), errs)
	g.POST("/contact", sh.Submit)

	uh := NewUploadHandler(uploads, errs, 0, 0)
	g.POST("/upload/image", admin, uh.Image)
	g.POST("/upload/cv", admin, uh.CV)
	g.DELETE("/upload/:filename", admin, uh.Delete)

	dh := NewDownloadHandler(uploads, errs)
	g.GET("/download-cv", dh.CV)

	g.NoRoute(NotFound)
	env.engine = g
	return env
}

func (e *testEnv) do(method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(method, path string, v interface{}, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	}
	h := http.Header{"Content-Type": {"application/json"}}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return e.do(method, path, body, h)
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.json(http.MethodPost, "/auth/login", gin.H{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func (e *testEnv) multipart(t *testing.T, path, token string, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return e.do(http.MethodPost, path, &buf, http.Header{
		"Content-Type":  {mw.FormDataContentType()},
		"Authorization": {"Bearer " + token},
	})
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// messages lists the top-level message followed by every field-level one.
func messages(env envelope) []string {
	out := []string{env.Message}
	for _, fe := range env.Errors {
		out = append(out, fe.Message)
	}
	return out
}
