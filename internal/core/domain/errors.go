package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoCredential is returned by a TokenStore when nothing is stored.
	ErrNoCredential = errors.New("no credential stored")

	// ErrInvalidCredentials is returned when the backend rejects a sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned when the backend rejects the stored credential
	// on a non-auth request. The client has already cleared it.
	ErrSessionExpired = errors.New("session expired")

	// ErrMissingToken is returned when a successful sign-in carries no token.
	ErrMissingToken = errors.New("sign-in response did not contain a token")

	// ErrBackendUnavailable wraps transport-level failures.
	ErrBackendUnavailable = errors.New("backend unavailable")

	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("access forbidden")
)

// ValidationError carries one human-readable message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}
