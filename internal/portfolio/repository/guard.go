package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
)

// Guard serializes read-modify-write cycles against a Store within this
// process and creates the document on first access.
type Guard struct {
	store    Store
	seedHash string
	now      func() time.Time
	mu       sync.Mutex
}

func NewGuard(store Store, seedHash string) *Guard {
	return &Guard{store: store, seedHash: seedHash, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

func (g *Guard) Now() time.Time { return g.now() }

// Init makes sure a password-protected document exists. It fails with
// ErrNoAdminPassword when the store is empty and no seed hash was given.
func (g *Guard) Init(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := LoadOrNew(ctx, g.store, g.seedHash, g.now())
	return err
}

// Load returns the current document, creating it when absent. Without a
// seed hash an absent document reads as empty and nothing is persisted.
func (g *Guard) Load(ctx context.Context) (*portfolio.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, err := LoadOrNew(ctx, g.store, g.seedHash, g.now())
	if errors.Is(err, ErrNoAdminPassword) {
		return portfolio.New("", g.now()), nil
	}
	return doc, err
}

// Update loads the document, applies fn and saves the result. Nothing is
// saved when fn returns an error.
func (g *Guard) Update(ctx context.Context, fn func(doc *portfolio.Document) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, err := LoadOrNew(ctx, g.store, g.seedHash, g.now())
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return g.store.Save(ctx, doc)
}
