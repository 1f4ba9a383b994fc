package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/internal/auth"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
	"github.com/portfolio-site/portfolio-api/pkg/middleware"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc  *auth.Service
	errs Errors
}

func NewAuthHandler(svc *auth.Service, errs Errors) *AuthHandler {
	return &AuthHandler{svc: svc, errs: errs}
}

// Login exchanges the admin password for a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Write(c, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Password)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     res.Token,
		"expiresIn": humanDuration(res.ExpiresIn),
	})
}

// Verify confirms the bearer token accepted by the auth middleware.
func (h *AuthHandler) Verify(c *gin.Context) {
	role := tokens.RoleAdmin
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(*tokens.Claims); ok && claims.Role != "" {
			role = claims.Role
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "valid": true, "role": role})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Write(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
