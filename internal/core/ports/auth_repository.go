package ports

import (
	"context"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// UserRepository persists accounts for the development stub backend.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
