package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperror.Invalid("f", "bad"), http.StatusBadRequest},
		{apperror.NoOpChange("same"), http.StatusBadRequest},
		{apperror.PayloadTooLarge(10 << 20), http.StatusBadRequest},
		{apperror.UnsupportedMediaType("no"), http.StatusBadRequest},
		{apperror.InvalidCredentials("no"), http.StatusUnauthorized},
		{apperror.Unauthorized("no"), http.StatusUnauthorized},
		{apperror.Forbidden("no"), http.StatusForbidden},
		{apperror.NotFound("File", ""), http.StatusNotFound},
		{apperror.RateLimited(), http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", apperror.NotFound("x", "1")), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}

func TestErrorsRedactInProduction(t *testing.T) {
	for _, production := range []bool{true, false} {
		g := gin.New()
		errs := Errors{Production: production}
		g.GET("/", func(c *gin.Context) { errs.Write(c, errors.New("mongo: connection refused")) })
		w := httptest.NewRecorder()
		g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		if production {
			assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
		} else {
			assert.Contains(t, w.Body.String(), "connection refused")
		}
	}
}

func TestValidationBodyListsFields(t *testing.T) {
	g := gin.New()
	g.GET("/", func(c *gin.Context) {
		Errors{}.Write(c, apperror.Validation(
			apperror.FieldError{Field: "email", Message: "Please provide a valid email address"},
			apperror.FieldError{Field: "message", Message: "Message must be between 10 and 2000 characters"},
		))
	})
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":[
		{"field":"email","message":"Please provide a valid email address"},
		{"field":"message","message":"Message must be between 10 and 2000 characters"}]}`, w.Body.String())
}

func TestNotFound(t *testing.T) {
	g := gin.New()
	g.NoRoute(NotFound)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Endpoint not found"}`, w.Body.String())
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "24h", humanDuration(24*time.Hour))
	assert.Equal(t, "1h30m0s", humanDuration(90*time.Minute))
}

func TestHealthAndReady(t *testing.T) {
	var storeErr error
	h := NewHealthHandler("test", map[string]Check{
		"store": func(context.Context) error { return storeErr },
	})
	g := gin.New()
	g.GET("/health", h.Health)
	g.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"environment":"test"`)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":true`)

	storeErr = errors.New("down")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"store":false`)
}
