package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/infrastructure/navigation"
	"github.com/99minutos/storefront-console/internal/infrastructure/tokenstore"
	"github.com/99minutos/storefront-console/internal/stubapi"
)

func TestSignIn_AcceptsLegacyPayloads(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc","id":7,"username":"alice","roles":[{"name":"ROLE_ADMIN"},"seller"]}`))
	}))

	res, err := c.SignIn(context.Background(), domain.Credentials{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if res.Token != "abc" || res.User.ID != "7" {
		t.Fatalf("unexpected result: %+v %+v", res, res.User)
	}
	if !res.User.Roles.Has(domain.RoleAdmin) || !res.User.Roles.Has(domain.RoleSeller) {
		t.Fatalf("unexpected roles: %v", res.User.Roles)
	}
}

func TestSignIn_MissingTokenIsAnError(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"alice"}`))
	}))

	if _, err := c.SignIn(context.Background(), domain.Credentials{Username: "alice", Password: "pw"}); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestSignUp_SendsShortRoleList(t *testing.T) {
	var got signUpRequest
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"User registered successfully!"}`))
	}))
	ctx := context.Background()

	p, err := c.SignUp(ctx, domain.Registration{Username: "bob", Email: "bob@example.com", Password: "secret1", Role: "ROLE_SELLER"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if len(got.Role) != 1 || got.Role[0] != "seller" {
		t.Fatalf("expected role [seller], got %v", got.Role)
	}
	if p.Username != "bob" || p.Email != "bob@example.com" {
		t.Fatalf("expected profile to fall back to the request, got %+v", p)
	}

	if _, err := c.SignUp(ctx, domain.Registration{Username: "carl", Email: "carl@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if got.Role != nil {
		t.Fatalf("expected role omitted, got %v", got.Role)
	}
}

func TestClient_AgainstStubBackend(t *testing.T) {
	stub := stubapi.NewServer(stubapi.Options{JWTSecret: "secret", TokenTTL: time.Hour, Logger: zerolog.Nop()})
	ts := httptest.NewServer(stub.Handler())
	t.Cleanup(ts.Close)

	store := tokenstore.NewMemoryStore()
	nav := navigation.NewHistory()
	c, err := New(Options{BaseURL: ts.URL + stubapi.BasePath, RedirectDelay: testDelay, Logger: zerolog.Nop()}, store, nav)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if _, err := c.SignUp(ctx, domain.Registration{Username: "dana", Email: "dana@example.com", Password: "secret1", Role: "seller"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	res, err := c.SignIn(ctx, domain.Credentials{Username: "dana", Password: "secret1"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := store.Save(ctx, res.Token); err != nil {
		t.Fatalf("save: %v", err)
	}

	me, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if me.Username != "dana" || !me.Roles.Has(domain.RoleSeller) {
		t.Fatalf("unexpected profile: %+v", me)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	// The revoked token is still stored. Asking who it belongs to is an
	// auth call and leaves it alone; the next data call forces a logout.
	nav.Visit("/account")
	if _, err := c.CurrentUser(ctx); err == nil || errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected a plain rejection from the who-am-I call, got %v", err)
	}
	if tok, _ := store.Read(ctx); tok != res.Token {
		t.Fatalf("who-am-I rejection must not clear the credential")
	}
	if err := c.GetJSON(ctx, "/orders/my", nil); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected credential cleared, got %v", err)
	}
	if navs := waitForNavigations(t, nav, 1); navs[0] != DefaultLoginPath {
		t.Fatalf("unexpected navigation %v", navs)
	}
}
