// Package server composes the gin engine: middleware, every API route
// under both "/" and "/api", static uploads, probes and metrics.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/handlers"
	"github.com/portfolio-site/portfolio-api/internal/auth"
	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/service"
	"github.com/portfolio-site/portfolio-api/internal/upload"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/middleware"
)

// JSONBodyLimit caps every non-multipart request body.
const JSONBodyLimit = 10 << 20

// Deps is everything the router needs. Limiters maps a rate-limit class to
// its limiter; a missing class is not limited.
type Deps struct {
	Config      *config.Config
	Auth        *auth.Service
	Content     *service.ContentService
	Submissions *service.SubmissionService
	Uploads     *upload.Service
	Limiters    map[string]middleware.Limiter
	// UploadsDir is served at /uploads/ when set (local blob store only).
	UploadsDir string
	Checks     map[string]handlers.Check
	Metrics    http.Handler
}

// New builds the engine.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warnf("invalid TRUSTED_PROXIES, trusting none: %v", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestMetrics(), middleware.SecurityEvents())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins), middleware.SecurityHeaders(cfg.Server.IsProduction()))

	health := handlers.NewHealthHandler(cfg.Server.Environment, d.Checks)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	handlers.RegisterSwagger(r)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	if d.UploadsDir != "" {
		static := r.Group("/uploads", middleware.StaticHeaders())
		static.Static("", d.UploadsDir)
	}

	rt := &routes{deps: d, errs: handlers.Errors{Production: cfg.Server.IsProduction()}}
	rt.mount(r.Group("/"))
	rt.mount(r.Group("/api"))

	r.NoRoute(handlers.NotFound)
	return r
}

type routes struct {
	deps Deps
	errs handlers.Errors
}

// limit returns the limiter middleware for class, or a no-op.
func (rt *routes) limit(class string) gin.HandlerFunc {
	if lim, ok := rt.deps.Limiters[class]; ok && lim != nil {
		return middleware.RateLimit(class, lim)
	}
	return func(c *gin.Context) { c.Next() }
}

func (rt *routes) mount(g *gin.RouterGroup) {
	d := rt.deps
	requireAdmin := middleware.AuthMiddleware(d.Auth)
	jsonBody := middleware.BodyLimit(JSONBodyLimit)

	g.Use(rt.limit(config.ClassGeneral))

	ah := handlers.NewAuthHandler(d.Auth, rt.errs)
	a := g.Group("/auth", jsonBody)
	a.POST("/login", rt.limit(config.ClassAuth), ah.Login)
	a.GET("/verify", requireAdmin, ah.Verify)
	a.POST("/change-password", requireAdmin, rt.limit(config.ClassAuth), ah.ChangePassword)

	ch := handlers.NewContentHandler(d.Content, rt.errs)
	c := g.Group("/content", jsonBody)
	c.GET("", ch.Get)
	c.PUT("", requireAdmin, rt.limit(config.ClassContentWrite), ch.Update)
	c.GET("/submissions", requireAdmin, ch.Submissions)
	c.DELETE("/submissions/:id", requireAdmin, rt.limit(config.ClassContentWrite), ch.DeleteSubmission)

	sh := handlers.NewContactHandler(d.Submissions, rt.errs)
	g.POST("/contact", jsonBody, rt.limit(config.ClassContact), sh.Submit)

	uh := handlers.NewUploadHandler(d.Uploads, rt.errs, d.Config.Upload.MaxImageSize, d.Config.Upload.MaxCVSize)
	u := g.Group("/upload", requireAdmin)
	u.POST("/image", rt.limit(config.ClassUpload), uh.Image)
	u.POST("/cv", rt.limit(config.ClassUpload), uh.CV)
	u.DELETE("/:filename", rt.limit(config.ClassContentWrite), uh.Delete)

	dh := handlers.NewDownloadHandler(d.Uploads, rt.errs)
	g.GET("/download-cv", dh.CV)
}
