package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/upload"
)

const (
	// parts above this size spill to temporary files
	multipartMemory = 1 << 20
	// allowance for multipart boundaries and headers
	multipartOverhead = 1 << 20
)

type UploadHandler struct {
	svc          *upload.Service
	errs         Errors
	maxImageSize int64
	maxCVSize    int64
}

func NewUploadHandler(svc *upload.Service, errs Errors, maxImageSize, maxCVSize int64) *UploadHandler {
	if maxImageSize <= 0 {
		maxImageSize = upload.DefaultMaxSize
	}
	if maxCVSize <= 0 {
		maxCVSize = upload.DefaultMaxSize
	}
	return &UploadHandler{svc: svc, errs: errs, maxImageSize: maxImageSize, maxCVSize: maxCVSize}
}

func (h *UploadHandler) Image(c *gin.Context) {
	files, cleanup, err := h.files(c, "image", h.maxImageSize)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	defer cleanup()

	res, err := h.svc.UploadImage(c.Request.Context(), files)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Image uploaded successfully",
		"url":      res.URL,
		"filename": res.Filename,
		"size":     res.Size,
	})
}

func (h *UploadHandler) CV(c *gin.Context) {
	files, cleanup, err := h.files(c, "cv", h.maxCVSize)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	defer cleanup()

	res, err := h.svc.UploadCV(c.Request.Context(), files)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "CV uploaded successfully",
		"url":      res.URL,
		"filename": res.Filename,
		"size":     res.Size,
	})
}

func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteFile(c.Request.Context(), c.Param("filename")); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}

// files parses the multipart body and opens every part sent under field.
// Parts under any other file field are rejected.
func (h *UploadHandler) files(c *gin.Context, field string, limit int64) ([]upload.File, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, nil, apperror.PayloadTooLarge(limit)
		}
		return nil, nil, apperror.Invalid(field, "Request must be multipart/form-data with a file")
	}
	form := c.Request.MultipartForm

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		_ = form.RemoveAll()
	}

	for name := range form.File {
		if name != field {
			cleanup()
			return nil, nil, apperror.Invalid(name, fmt.Sprintf("Unexpected field name. Use %q for this upload.", field))
		}
	}

	var files []upload.File
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open upload part: %w", err)
		}
		opened = append(opened, f)
		files = append(files, upload.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return files, cleanup, nil
}
