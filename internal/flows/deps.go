package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
)

// SessionStore is the subset of session.Store the flows use.
type SessionStore interface {
	WritePrimary(ctx context.Context, token string, expiresAt time.Time) error
	WriteFallback(ctx context.Context, isAuthenticated bool, role, userID string) error
	ReadPrimary(ctx context.Context) (string, bool, error)
	ReadFallback(ctx context.Context) (session.Record, bool, error)
	Clear(ctx context.Context) error
}

// Deps groups flow dependencies. The Authority builds this once and passes
// it to every flow.
type Deps struct {
	Decode      func(string) (*token.Claims, error)
	Now         func() time.Time
	IsKnownRole func(string) bool
	Store       SessionStore
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
