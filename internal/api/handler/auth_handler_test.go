package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

type stubSessions struct {
	session    domain.Session
	loginFn    func(ctx context.Context, username, password string) (*domain.UserProfile, error)
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error)
	logouts    int
}

func (s *stubSessions) Session() domain.Session { return s.session }

func (s *stubSessions) Login(ctx context.Context, username, password string) (*domain.UserProfile, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessions) Register(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error) {
	return s.registerFn(ctx, reg)
}

func (s *stubSessions) Logout(ctx context.Context) {
	s.logouts++
	s.session = domain.Anonymous()
}

func TestAuthHandler_Login_RedirectsToReturnPath(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		session: domain.Anonymous(),
		loginFn: func(ctx context.Context, username, password string) (*domain.UserProfile, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.UserProfile{ID: "1", Username: username}, nil
		},
	}
	handler := NewAuthHandler(stub)

	form := url.Values{"username": {"alice"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login?from=%2Forders%3Fpage%3D2", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/orders?page=2" {
		t.Fatalf("expected redirect to /orders?page=2, got %q", loc)
	}
}

func TestAuthHandler_Login_RejectsForeignReturnPath(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		loginFn: func(ctx context.Context, username, password string) (*domain.UserProfile, error) {
			return &domain.UserProfile{ID: "1", Username: username}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"username":"alice","password":"secret","from":"https://evil.example.com/"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestAuthHandler_Login_PropagatesError(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		loginFn: func(ctx context.Context, username, password string) (*domain.UserProfile, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		loginFn: func(ctx context.Context, username, password string) (*domain.UserProfile, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_LoginView(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{session: domain.Anonymous()}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/login?from=%2Fadmin%2Forders", nil)
	rec := httptest.NewRecorder()
	if err := handler.LoginView(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp loginViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.From != "/admin/orders" {
		t.Fatalf("expected from to be echoed, got %q", resp.From)
	}

	stub.session = domain.Authenticated(&domain.UserProfile{ID: "1", Username: "alice"})
	rec = httptest.NewRecorder()
	if err := handler.LoginView(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin/orders" {
		t.Fatalf("authenticated user should be sent on, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{
		registerFn: func(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error) {
			if reg.Username != "bob" || reg.Role != "seller" {
				t.Fatalf("unexpected registration: %+v", reg)
			}
			return &domain.UserProfile{Username: reg.Username, Email: reg.Email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"username":"bob","email":"bob@example.com","password":"secret1","role":"seller"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := echo.New()
	stub := &stubSessions{session: domain.Authenticated(&domain.UserProfile{ID: "1"})}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	if err := handler.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.logouts != 1 {
		t.Fatalf("expected one logout, got %d", stub.logouts)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
