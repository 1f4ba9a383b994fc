package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

// DefaultOrigin is used when no usable origin is configured.
const DefaultOrigin = "http://localhost:5173"

// CORSConfig builds the cors configuration for origins. Entries that
// gin-contrib/cors would reject are dropped; "*" allows every origin
// without credentials.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	var valid []string
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "*":
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		case strings.HasPrefix(o, "http://"), strings.HasPrefix(o, "https://"):
			valid = append(valid, o)
		case o != "":
			logger.Warnf("cors: ignoring origin %q (scheme must be http or https)", o)
		}
	}
	if len(valid) == 0 {
		valid = []string{DefaultOrigin}
	}
	cfg.AllowOrigins = valid
	return cfg
}

// CORS returns the cross-origin middleware for origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(CORSConfig(origins))
}

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' https://fonts.googleapis.com https://fonts.cdnfonts.com; " +
	"font-src 'self' data: https://fonts.gstatic.com https://fonts.cdnfonts.com; " +
	"img-src 'self' data: https: blob:; " +
	"script-src 'self' 'unsafe-inline'; " +
	"frame-src 'none'; object-src 'none'"

// SecurityHeaders sets the browser hardening headers in every environment.
// HSTS is only sent in production, on HTTPS requests.
func SecurityHeaders(production bool) gin.HandlerFunc {
	var sts int64
	if production {
		sts = 31536000
	}
	// IsDevelopment would switch off every header, not just HSTS
	return secure.New(secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
		STSSeconds:            sts,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         false,
	})
}

// BodyLimit caps the request body at n bytes. Reads beyond the cap fail
// with *http.MaxBytesError.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// SecurityEvents logs every 401, 403 and 429 response.
func SecurityEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		switch status := c.Writer.Status(); status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			logger.Warnw("security event",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"ip", c.ClientIP(),
			)
		}
	}
}

// RequestMetrics counts requests by method, matched route and status.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// StaticHeaders decorates files served from the uploads directory.
func StaticHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Cache-Control", "public, max-age=86400")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		if strings.HasSuffix(strings.ToLower(c.Request.URL.Path), ".pdf") {
			h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		}
		c.Next()
	}
}
