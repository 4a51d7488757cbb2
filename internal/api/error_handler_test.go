package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid credentials", fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, &domain.APIError{Status: 401}), http.StatusUnauthorized, "invalid username or password"},
		{"backend down", fmt.Errorf("%w: dial tcp", domain.ErrBackendUnavailable), http.StatusBadGateway, "the service is unavailable, please try again later"},
		{"backend 500", &domain.APIError{Status: 500, Message: "stack trace"}, http.StatusBadGateway, "the service is unavailable, please try again later"},
		{"backend 403", &domain.APIError{Status: 403, Message: "forbidden"}, http.StatusForbidden, "forbidden"},
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "not found"), http.StatusNotFound, "not found"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/orders", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/register", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.ValidationError{Fields: map[string]string{
		"username": "username must be at least 3 characters",
		"email":    "email must be a valid email",
	}}, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", resp.Fields)
	}
}

func TestHTTPErrorHandler_SessionExpiredRedirects(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/orders", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("%w: %w", domain.ErrSessionExpired, &domain.APIError{Status: 401}), c)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login?from=%2Forders" {
		t.Fatalf("unexpected location %q", loc)
	}
}
