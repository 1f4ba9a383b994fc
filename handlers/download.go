package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/upload"
)

type DownloadHandler struct {
	svc  *upload.Service
	errs Errors
}

func NewDownloadHandler(svc *upload.Service, errs Errors) *DownloadHandler {
	return &DownloadHandler{svc: svc, errs: errs}
}

// CV redirects to the recorded CV URL or streams the newest stored PDF.
func (h *DownloadHandler) CV(c *gin.Context) {
	cv, err := h.svc.LatestCV(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	if cv.RedirectURL != "" {
		c.Redirect(http.StatusFound, cv.RedirectURL)
		return
	}
	defer cv.Content.Close()
	c.DataFromReader(http.StatusOK, cv.Size, "application/pdf", cv.Content, map[string]string{
		"Content-Disposition": `attachment; filename="` + cv.Filename + `"`,
	})
}
