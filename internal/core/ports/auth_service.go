package ports

import (
	"context"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// AuthService is the stub backend's account use-case layer.
type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
