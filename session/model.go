package session

import (
	"fmt"

	"github.com/MrEthical07/goGuard/permission"
)

// Status is the resolution state of a [Session].
type Status uint8

const (
	// StatusLoading is the state before the first check completed.
	StatusLoading Status = iota
	// StatusAuthenticated means a role is known for the current user.
	StatusAuthenticated
	// StatusUnauthenticated means no usable session exists.
	StatusUnauthenticated
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = StatusLoading
	case "authenticated":
		*s = StatusAuthenticated
	case "unauthenticated":
		*s = StatusUnauthenticated
	default:
		return fmt.Errorf("unknown session status %q", text)
	}
	return nil
}

// Session is an immutable snapshot of the session view. Mutation happens by
// replacing the whole value.
type Session struct {
	Status Status
	Role   string
	UserID string
}

// Loading returns the unresolved session.
func Loading() Session {
	return Session{Status: StatusLoading}
}

// Unauthenticated returns the empty, resolved session.
func Unauthenticated() Session {
	return Session{Status: StatusUnauthenticated}
}

// Authenticated returns a resolved session for role. An empty role becomes
// [permission.RoleUser] so an authenticated session always carries a role.
func Authenticated(role, userID string) Session {
	if role == "" {
		role = permission.RoleUser
	}
	return Session{
		Status: StatusAuthenticated,
		Role:   role,
		UserID: userID,
	}
}

// IsLoading reports whether the first check has not resolved yet.
func (s Session) IsLoading() bool {
	return s.Status == StatusLoading
}

// IsAuthenticated reports whether the session is authenticated.
func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// HasPermission returns IsAuthenticated when required is empty, otherwise
// whether the session is authenticated with one of the required roles.
func (s Session) HasPermission(required ...string) bool {
	if len(required) == 0 {
		return s.IsAuthenticated()
	}
	if !s.IsAuthenticated() || s.Role == "" {
		return false
	}
	return permission.Contains(required, s.Role)
}

// Record returns the facts mirrored into the fallback tier.
func (s Session) Record() Record {
	if !s.IsAuthenticated() {
		return Record{}
	}
	return Record{
		IsAuthenticated: true,
		Role:            s.Role,
		UserID:          s.UserID,
	}
}
