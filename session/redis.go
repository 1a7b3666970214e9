package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTier keeps both tiers in Redis under a per-client namespace. The token
// key carries a TTL derived from the token expiry; the fallback keys are
// written without one.
type RedisTier struct {
	redis  redis.UniversalClient
	prefix string
	client string
	now    func() time.Time
}

// NewRedisTier returns a tier namespaced by prefix and clientID. An empty
// clientID is replaced by a random UUID, so every process gets its own
// namespace unless told otherwise.
func NewRedisTier(rdb redis.UniversalClient, prefix, clientID string) *RedisTier {
	if prefix == "" {
		prefix = "gg"
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return &RedisTier{
		redis:  rdb,
		prefix: prefix,
		client: clientID,
		now:    time.Now,
	}
}

// WithClock overrides the clock used to derive the token TTL.
func (t *RedisTier) WithClock(now func() time.Time) *RedisTier {
	if now != nil {
		t.now = now
	}
	return t
}

// ClientID returns the namespace of this tier.
func (t *RedisTier) ClientID() string {
	return t.client
}

func (t *RedisTier) key(name string) string {
	return t.prefix + ":" + t.client + ":" + name
}

func (t *RedisTier) fallbackKeys() []string {
	return []string{
		t.key(IsAuthenticatedKey),
		t.key(UserRoleKey),
		t.key(UserIDKey),
	}
}

// WritePrimary stores token with a TTL ending at expiresAt. An expiry that
// already passed deletes the key.
func (t *RedisTier) WritePrimary(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(t.now())
	if ttl <= 0 {
		return t.ClearPrimary(ctx)
	}
	if err := t.redis.Set(ctx, t.key(TokenKey), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ReadPrimary returns the stored token.
func (t *RedisTier) ReadPrimary(ctx context.Context) (string, bool, error) {
	token, err := t.redis.Get(ctx, t.key(TokenKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// ClearPrimary deletes the token key.
func (t *RedisTier) ClearPrimary(ctx context.Context) error {
	if err := t.redis.Del(ctx, t.key(TokenKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WriteFallback stores the three flags as independent keys without expiry.
// Empty values delete their key.
func (t *RedisTier) WriteFallback(ctx context.Context, rec Record) error {
	_, err := t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if rec.IsAuthenticated {
			pipe.Set(ctx, t.key(IsAuthenticatedKey), "true", 0)
		} else {
			pipe.Del(ctx, t.key(IsAuthenticatedKey))
		}
		if rec.Role != "" {
			pipe.Set(ctx, t.key(UserRoleKey), rec.Role, 0)
		} else {
			pipe.Del(ctx, t.key(UserRoleKey))
		}
		if rec.UserID != "" {
			pipe.Set(ctx, t.key(UserIDKey), rec.UserID, 0)
		} else {
			pipe.Del(ctx, t.key(UserIDKey))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ReadFallback returns the stored flags. ok is false when no key exists.
func (t *RedisTier) ReadFallback(ctx context.Context) (Record, bool, error) {
	values, err := t.redis.MGet(ctx, t.fallbackKeys()...).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var (
		rec   Record
		found bool
	)
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		found = true
		switch i {
		case 0:
			rec.IsAuthenticated = s == "true"
		case 1:
			rec.Role = s
		case 2:
			rec.UserID = s
		}
	}
	return rec, found, nil
}

// ClearFallback deletes the three flags.
func (t *RedisTier) ClearFallback(ctx context.Context) error {
	if err := t.redis.Del(ctx, t.fallbackKeys()...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
