package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token cannot be decoded into claims.
var ErrMalformed = errors.New("malformed token")

// Claims is the decoded view of a session token.
type Claims struct {
	Role      string
	UserID    string
	Subject   string
	ExpiresAt int64 // epoch seconds; zero when the claim is absent
}

// RoleOrDefault returns the role claim, or "user" when the claim is empty.
func (c *Claims) RoleOrDefault() string {
	if c == nil || c.Role == "" {
		return "user"
	}
	return c.Role
}

// Expiry returns the expiry claim as a time.
func (c *Claims) Expiry() time.Time {
	if c == nil {
		return time.Unix(0, 0)
	}
	return time.Unix(c.ExpiresAt, 0)
}

type wireClaims struct {
	Role   string `json:"role,omitempty"`
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Codec decodes tokens without signature verification. The zero value is
// ready to use.
type Codec struct {
	parser *jwt.Parser
}

// NewCodec returns a Codec.
func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

// Decode parses raw into [Claims]. Structural failures wrap [ErrMalformed].
// A missing exp claim decodes to ExpiresAt == 0, which [IsExpired] always
// reports as expired.
func (c *Codec) Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	parser := jwt.NewParser()
	if c != nil && c.parser != nil {
		parser = c.parser
	}

	var wc wireClaims
	if _, _, err := parser.ParseUnverified(raw, &wc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims := &Claims{
		Role:    wc.Role,
		UserID:  wc.UserID,
		Subject: wc.Subject,
	}
	if wc.ExpiresAt != nil {
		claims.ExpiresAt = wc.ExpiresAt.Unix()
	}
	return claims, nil
}

// IsExpired reports whether claims expired at or before now, at second
// resolution.
func IsExpired(claims *Claims, now time.Time) bool {
	if claims == nil {
		return true
	}
	return claims.ExpiresAt <= now.Unix()
}

// IsExpired is the method form of the package-level [IsExpired].
func (c *Codec) IsExpired(claims *Claims, now time.Time) bool {
	return IsExpired(claims, now)
}
