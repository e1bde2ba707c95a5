// Package session owns the authentication session lifecycle: login, logout,
// scheduled token renewal, and restore from durable storage.
package session

import "time"

// Role is the coarse authorization level carried by an identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the authenticated principal. It never changes across renewals;
// only the token and expiry do.
type Identity struct {
	ID         string
	Name       string
	Email      string
	Role       Role
	Department string
}

// Session is the active authenticated identity plus its bearer token and
// absolute expiry. At most one Session exists per Manager.
type Session struct {
	Identity Identity
	Token    string
	Expiry   time.Time
}

// Active reports whether the session's token is still valid at the given time.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.Expiry.After(now)
}

// Remaining returns how much validity the token has left.
func (s *Session) Remaining(now time.Time) time.Duration {
	return s.Expiry.Sub(now)
}
