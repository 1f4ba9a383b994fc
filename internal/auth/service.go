package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/apperror"
	"github.com/portfolio-site/portfolio-api/internal/portfolio"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

// Service is the Auth Module. There is one admin identified by a shared
// password whose bcrypt hash lives in the portfolio document.
type Service struct {
	docs      *repository.Guard
	passwords *Passwords
	tokens    *tokens.Manager
}

func NewService(docs *repository.Guard, passwords *Passwords, tm *tokens.Manager) *Service {
	return &Service{docs: docs, passwords: passwords, tokens: tm}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
}

func (s *Service) Login(ctx context.Context, password string) (*LoginResult, error) {
	if password == "" {
		return nil, apperror.Invalid("password", "Password is required")
	}
	doc, err := s.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if doc.AdminSettings.PasswordHash == "" {
		logger.Warnf("login attempted but no admin password is configured")
		return nil, apperror.InvalidCredentials("Invalid credentials")
	}
	if err := s.passwords.Verify(doc.AdminSettings.PasswordHash, password); err != nil {
		if errors.Is(err, errMismatch) {
			return nil, apperror.InvalidCredentials("Invalid credentials")
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	token, err := s.tokens.Issue()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// Verify validates a bearer token. It touches no storage.
func (s *Service) Verify(token string) (*tokens.Claims, error) {
	if token == "" {
		return nil, apperror.Unauthorized("No token provided")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if tokens.Expired(err) {
			return nil, apperror.Unauthorized("Token expired")
		}
		return nil, apperror.Unauthorized("Invalid token")
	}
	return claims, nil
}

// ChangePassword replaces the admin hash after checking the current password.
// Tokens issued before the change stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	var fields []apperror.FieldError
	if current == "" {
		fields = append(fields, apperror.FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	if next == "" {
		fields = append(fields, apperror.FieldError{Field: "newPassword", Message: "New password is required"})
	} else {
		for _, msg := range PolicyViolations(next) {
			fields = append(fields, apperror.FieldError{Field: "newPassword", Message: msg})
		}
	}
	if len(fields) > 0 {
		return apperror.Validation(fields...)
	}

	err := s.docs.Update(ctx, func(doc *portfolio.Document) error {
		if err := s.passwords.Verify(doc.AdminSettings.PasswordHash, current); err != nil {
			if errors.Is(err, errMismatch) {
				return apperror.InvalidCredentials("Current password is incorrect")
			}
			return err
		}
		if current == next {
			return apperror.NoOpChange("New password must be different from current password")
		}
		hash, err := s.passwords.Hash(next)
		if err != nil {
			return err
		}
		now := s.docs.Now()
		doc.AdminSettings.PasswordHash = hash
		doc.AdminSettings.LastPasswordChange = now.UTC().Format(time.RFC3339)
		doc.Touch("admin", now)
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("change password: %w", err)
	}
	logger.Infof("admin password changed")
	return nil
}
