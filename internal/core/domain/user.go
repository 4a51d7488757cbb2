package domain

import "time"

// User is an account as stored by the development stub backend.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        Roles     `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile projects the account onto the client-facing profile.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    append(Roles(nil), u.Roles...),
	}
}

// Registration is the sign-up form.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=40"`
	// Role is empty for the backend's default role.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=admin seller user"`
}

// Credentials is the sign-in form.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInResult is what a successful sign-in hands back.
type SignInResult struct {
	Token string
	User  *UserProfile
}
