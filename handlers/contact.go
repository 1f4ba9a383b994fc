package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/portfolio/service"
)

type ContactHandler struct {
	svc  *service.SubmissionService
	errs Errors
}

func NewContactHandler(svc *service.SubmissionService, errs Errors) *ContactHandler {
	return &ContactHandler{svc: svc, errs: errs}
}

// Submit accepts the public contact form.
func (h *ContactHandler) Submit(c *gin.Context) {
	var in service.ContactInput
	if err := bindJSON(c, &in); err != nil {
		h.errs.Write(c, err)
		return
	}
	in.SourceIP = c.ClientIP()
	in.UserAgent = c.Request.UserAgent()

	res, err := h.svc.Submit(c.Request.Context(), in)
	if errors.Is(err, service.ErrSubmissionLost) {
		h.errs.Internal(c, err, "Failed to send message. Please try again later.")
		return
	}
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	body := gin.H{
		"success": true,
		"message": "Your message has been sent successfully!",
	}
	if res.Stored {
		body["id"] = res.Submission.ID
	} else {
		// delivered by email only; there is no record to refer to
		body["message"] = "Your message was delivered by email but could not be saved."
	}
	if len(res.Warnings) > 0 {
		body["warnings"] = res.Warnings
	}
	c.JSON(http.StatusOK, body)
}
