package domain

// State is the observable lifecycle state of the client session.
type State int

const (
	StateUninitialized State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// UserProfile is the identity returned by the backend for the current credential.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Roles    Roles  `json:"roles"`
}

func (p *UserProfile) clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Roles = append(Roles(nil), p.Roles...)
	return &c
}

// Session is a read-only snapshot of the client's authentication state.
// IsAuthenticated is true exactly when CurrentUser is non-nil.
type Session struct {
	CurrentUser     *UserProfile `json:"current_user,omitempty"`
	IsAuthenticated bool         `json:"is_authenticated"`
	Loading         bool         `json:"loading"`
}

// Uninitialized is the session before the startup credential check finishes.
func Uninitialized() Session {
	return Session{Loading: true}
}

// Anonymous is the session with no identity.
func Anonymous() Session {
	return Session{}
}

// Authenticated builds a session for the given profile.
func Authenticated(user *UserProfile) Session {
	return Session{CurrentUser: user.clone(), IsAuthenticated: true}
}

// State derives the lifecycle state from the snapshot.
func (s Session) State() State {
	switch {
	case s.Loading:
		return StateUninitialized
	case s.CurrentUser != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s Session) Clone() Session {
	s.CurrentUser = s.CurrentUser.clone()
	return s
}

// HasRole reports whether the current user carries the role. The name is
// canonicalized, so "admin", "ADMIN" and "ROLE_ADMIN" are equivalent.
func (s Session) HasRole(name string) bool {
	if s.CurrentUser == nil {
		return false
	}
	return s.CurrentUser.Roles.Has(name)
}

func (s Session) IsAdmin() bool  { return s.HasRole(RoleAdmin) }
func (s Session) IsSeller() bool { return s.HasRole(RoleSeller) }
func (s Session) IsUser() bool   { return s.HasRole(RoleUser) }
