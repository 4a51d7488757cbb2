package stubapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(NewMemoryUserRepository(), "secret", time.Hour)
}

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, domain.Registration{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
		Role:     "seller",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !user.Roles.Has(domain.RoleSeller) || len(user.Roles) != 1 {
		t.Fatalf("unexpected roles: %v", user.Roles)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear")
	}

	token, logged, err := svc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned %q, want %q", logged.ID, user.ID)
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("authenticated as %q", got.Username)
	}
}

func TestAuthService_DefaultRoleIsUser(t *testing.T) {
	svc := newTestService(t)
	user, err := svc.Register(context.Background(), domain.Registration{Username: "bob", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !user.Roles.Has(domain.RoleUser) {
		t.Fatalf("expected ROLE_USER, got %v", user.Roles)
	}
}

func TestAuthService_RegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, domain.Registration{Username: "carol", Password: "secret1", Role: "root"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown role: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, domain.Registration{Username: "carol", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, domain.Registration{Username: "carol", Password: "other12"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("duplicate: expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginRejectsBadPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Register(ctx, domain.Registration{Username: "dave", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "dave", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Register(ctx, domain.Registration{Username: "erin", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Login(ctx, "erin", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("logout of garbage token must succeed, got %v", err)
	}
}

func TestAuthService_ExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Register(ctx, domain.Registration{Username: "frank", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Login(ctx, "frank", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := NewAuthService(NewMemoryUserRepository(), "another-secret", time.Hour)
	if _, err := other.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature accepted: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}
