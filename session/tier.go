package session

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps transport failures of any tier.
var ErrStoreUnavailable = errors.New("session store unavailable")

const (
	// TokenKey names the primary-tier entry holding the raw token.
	TokenKey = "token"
	// IsAuthenticatedKey names the fallback flag; its value is "true" or absent.
	IsAuthenticatedKey = "isAuthenticated"
	// UserRoleKey names the fallback role entry.
	UserRoleKey = "userRole"
	// UserIDKey names the optional fallback user ID entry.
	UserIDKey = "userId"
)

// Record is the content of the fallback tier.
type Record struct {
	IsAuthenticated bool
	Role            string
	UserID          string
}

// PrimaryTier stores the raw token with an expiry derived from its exp claim.
type PrimaryTier interface {
	WritePrimary(ctx context.Context, token string, expiresAt time.Time) error
	// ReadPrimary returns ok == false when no unexpired token is stored.
	ReadPrimary(ctx context.Context) (token string, ok bool, err error)
	ClearPrimary(ctx context.Context) error
}

// FallbackTier stores [Record] facts with no expiry.
type FallbackTier interface {
	WriteFallback(ctx context.Context, rec Record) error
	// ReadFallback returns ok == false when none of the keys are present.
	ReadFallback(ctx context.Context) (rec Record, ok bool, err error)
	ClearFallback(ctx context.Context) error
}
