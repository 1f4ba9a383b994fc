package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/portfolio-site/portfolio-api/internal/portfolio"
)

// MemoryStore keeps the document in memory. Used by tests and for local
// development; it holds an encoded snapshot so callers never share state.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*portfolio.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return decodeDocument(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, doc *portfolio.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = b
	return nil
}

func decodeDocument(b []byte) (*portfolio.Document, error) {
	var d portfolio.Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	d.ID = portfolio.DocumentID
	if d.Submissions == nil {
		d.Submissions = []portfolio.Submission{}
	}
	return &d, nil
}
