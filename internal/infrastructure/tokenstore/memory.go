package tokenstore

import (
	"context"
	"slices"
	"sync"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// MemoryStore is a process-local token store and payment ledger.
type MemoryStore struct {
	mu       sync.Mutex
	token    string
	payments []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Read(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", domain.ErrNoCredential
	}
	return s.token, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = pushCapped(s.payments, sessionID, domain.MaxProcessedPayments)
	return nil
}

func (s *MemoryStore) IsProcessed(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.payments, sessionID), nil
}

func (s *MemoryStore) Processed(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payments), nil
}
