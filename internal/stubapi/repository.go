package stubapi

import (
	"context"
	"strconv"
	"sync"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

// MemoryUserRepository keeps accounts in process memory.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byName map[string]*domain.User
	byID   map[string]*domain.User
	nextID int
}

var _ ports.UserRepository = (*MemoryUserRepository)(nil)

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byName: make(map[string]*domain.User),
		byID:   make(map[string]*domain.User),
		nextID: 1,
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append(domain.Roles(nil), u.Roles...)
	return &c
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.Username]; exists {
		return nil, domain.ErrUserExists
	}

	u := cloneUser(user)
	u.ID = strconv.Itoa(r.nextID)
	r.nextID++
	r.byName[u.Username] = u
	r.byID[u.ID] = u
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}
