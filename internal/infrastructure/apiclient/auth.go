package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

// signInResponse accepts the backend's sign-in payload. The token has been
// sent as both jwtToken and token over time.
type signInResponse struct {
	JWTToken string        `json:"jwtToken"`
	Token    string        `json:"token"`
	UserID   domain.FlexID `json:"userId"`
	ID       domain.FlexID `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Roles    domain.Roles  `json:"roles"`
}

// profileResponse is the who-am-I and sign-up payload.
type profileResponse struct {
	ID       domain.FlexID `json:"id"`
	UserID   domain.FlexID `json:"userId"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Roles    domain.Roles  `json:"roles"`
	Message  string        `json:"message"`
}

func (p profileResponse) profile() *domain.UserProfile {
	id := p.ID
	if id == "" {
		id = p.UserID
	}
	return &domain.UserProfile{
		ID:       string(id),
		Username: p.Username,
		Email:    p.Email,
		Roles:    p.Roles,
	}
}

type signUpRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     []string `json:"role,omitempty"`
}

// SignIn exchanges credentials for a token and profile.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (*domain.SignInResult, error) {
	var resp signInResponse
	if err := c.PostJSON(ctx, PathSignIn, creds, &resp); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, apiErr)
		}
		return nil, err
	}

	token := resp.JWTToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	id := resp.UserID
	if id == "" {
		id = resp.ID
	}
	return &domain.SignInResult{
		Token: token,
		User: &domain.UserProfile{
			ID:       string(id),
			Username: resp.Username,
			Email:    resp.Email,
			Roles:    resp.Roles,
		},
	}, nil
}

// SignUp creates an account. An empty role is omitted so the backend applies
// its default; otherwise it is sent as a one-element list.
func (c *Client) SignUp(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error) {
	body := signUpRequest{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
	}
	if reg.Role != "" {
		body.Role = []string{domain.ShortRole(reg.Role)}
	}

	var resp profileResponse
	if err := c.PostJSON(ctx, PathSignUp, body, &resp); err != nil {
		return nil, err
	}

	p := resp.profile()
	if p.Username == "" {
		p.Username = reg.Username
	}
	if p.Email == "" {
		p.Email = reg.Email
	}
	return p, nil
}

// SignOut tells the backend to end the session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.PostJSON(ctx, PathSignOut, nil, nil)
}

// CurrentUser asks the backend who the stored credential belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*domain.UserProfile, error) {
	var resp profileResponse
	if err := c.GetJSON(ctx, PathCurrentUser, &resp); err != nil {
		return nil, err
	}
	return resp.profile(), nil
}
