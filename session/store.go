package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store composes the primary and fallback tiers.
type Store struct {
	primary  PrimaryTier
	fallback FallbackTier
}

// NewStore returns a Store writing to both tiers.
func NewStore(primary PrimaryTier, fallback FallbackTier) (*Store, error) {
	if primary == nil {
		return nil, errors.New("primary tier required")
	}
	if fallback == nil {
		return nil, errors.New("fallback tier required")
	}
	return &Store{primary: primary, fallback: fallback}, nil
}

// WritePrimary stores token until expiresAt.
func (s *Store) WritePrimary(ctx context.Context, token string, expiresAt time.Time) error {
	return s.primary.WritePrimary(ctx, token, expiresAt)
}

// WriteFallback stores the three fallback flags.
func (s *Store) WriteFallback(ctx context.Context, isAuthenticated bool, role, userID string) error {
	return s.fallback.WriteFallback(ctx, Record{
		IsAuthenticated: isAuthenticated,
		Role:            role,
		UserID:          userID,
	})
}

// ReadPrimary returns the stored token, if any.
func (s *Store) ReadPrimary(ctx context.Context) (string, bool, error) {
	return s.primary.ReadPrimary(ctx)
}

// ReadFallback returns the fallback flags, if any.
func (s *Store) ReadFallback(ctx context.Context) (Record, bool, error) {
	return s.fallback.ReadFallback(ctx)
}

// Clear removes both tiers. Both are always attempted; the returned error
// joins every tier failure.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	if err := s.primary.ClearPrimary(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear primary: %w", err))
	}
	if err := s.fallback.ClearFallback(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear fallback: %w", err))
	}
	return errors.Join(errs...)
}
