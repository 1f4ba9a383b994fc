package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/portfolio/service"
)

// UpdateSectionRequest replaces one named section with data.
type UpdateSectionRequest struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
}

type ContentHandler struct {
	svc  *service.ContentService
	errs Errors
}

func NewContentHandler(svc *service.ContentService, errs Errors) *ContentHandler {
	return &ContentHandler{svc: svc, errs: errs}
}

// Get returns every public section.
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.svc.GetPublicContent(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": content})
}

func (h *ContentHandler) Update(c *gin.Context) {
	var req UpdateSectionRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Write(c, err)
		return
	}
	at, err := h.svc.UpdateSection(c.Request.Context(), req.Section, req.Data)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        req.Section + " updated successfully",
		"updatedSection": req.Section,
		"timestamp":      at.Format(time.RFC3339),
	})
}

// Submissions lists stored contact messages, newest first.
// Non-numeric page or limit values fall back to the defaults.
func (h *ContentHandler) Submissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.svc.GetSubmissions(c.Request.Context(), page, limit)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": res.Submissions,
		"pagination":  res.Pagination,
	})
}

func (h *ContentHandler) DeleteSubmission(c *gin.Context) {
	if err := h.svc.DeleteSubmission(c.Request.Context(), c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission deleted successfully"})
}
