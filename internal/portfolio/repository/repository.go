// Package repository persists the singleton portfolio document.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
)

var ErrNotFound = errors.New("portfolio document not found")

// Store loads and saves the whole document. Load returns a copy the caller
// may mutate; Save replaces the stored document (last writer wins).
type Store interface {
	Load(ctx context.Context) (*portfolio.Document, error)
	Save(ctx context.Context, doc *portfolio.Document) error
}

// ErrNoAdminPassword means the document does not exist yet and there is no
// hash to protect a new one with.
var ErrNoAdminPassword = errors.New("portfolio document does not exist and no admin password is configured")

// LoadOrNew returns the stored document, creating and saving an empty one
// protected by seedHash when none exists. A stored document whose hash is
// empty is repaired from seedHash. A document is never created without a hash.
func LoadOrNew(ctx context.Context, s Store, seedHash string, now time.Time) (*portfolio.Document, error) {
	doc, err := s.Load(ctx)
	if err == nil {
		if doc.AdminSettings.PasswordHash == "" && seedHash != "" {
			doc.AdminSettings.PasswordHash = seedHash
			doc.Touch("system", now)
			if err := s.Save(ctx, doc); err != nil {
				return nil, fmt.Errorf("restore admin password: %w", err)
			}
		}
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if seedHash == "" {
		return nil, ErrNoAdminPassword
	}
	doc = portfolio.New(seedHash, now)
	if err := s.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("initialize portfolio: %w", err)
	}
	return doc, nil
}
