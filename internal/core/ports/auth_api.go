package ports

import (
	"context"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// AuthAPI is the backend's authentication surface as seen by the client.
type AuthAPI interface {
	SignIn(ctx context.Context, creds domain.Credentials) (*domain.SignInResult, error)
	SignUp(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.UserProfile, error)
}
