package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

// Errors writes error responses. In production 500 bodies never carry the
// underlying error text.
type Errors struct {
	Production bool
}

// statusOf maps the apperror taxonomy to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrNoOpChange),
		errors.Is(err, apperror.ErrPayloadTooLarge),
		errors.Is(err, apperror.ErrUnsupportedMediaType):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidCredentials), errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Write sends err as {success:false, message[, errors]}.
func (e Errors) Write(c *gin.Context, err error) {
	status := statusOf(err)
	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		body := gin.H{"success": false, "message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		c.AbortWithStatusJSON(status, body)
		return
	}
	e.Internal(c, err, "Internal server error")
}

// Internal logs err and sends a 500 with message.
func (e Errors) Internal(c *gin.Context, err error, message string) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	body := gin.H{"success": false, "message": message}
	if !e.Production && err != nil {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// bindJSON decodes the request body into v, translating decode failures
// into client errors.
func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return &apperror.AppError{Err: apperror.ErrPayloadTooLarge, Message: "Request body too large"}
		case errors.Is(err, io.EOF):
			return apperror.Invalid("body", "Request body is required")
		}
		return apperror.Invalid("body", "Request body must be valid JSON")
	}
	return nil
}

// humanDuration renders whole hours the way clients expect ("24h").
func humanDuration(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return strconv.Itoa(int(d/time.Hour)) + "h"
	}
	return d.String()
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Endpoint not found"})
}
