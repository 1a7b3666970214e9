package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints HS256 tokens carrying [Claims]. It exists for development
// tooling and fixtures; production tokens come from the backend.
type Issuer struct {
	key []byte
	ttl time.Duration
}

// NewIssuer returns an Issuer signing with key. ttl is applied when a claim
// set leaves ExpiresAt at zero.
func NewIssuer(key []byte, ttl time.Duration) (*Issuer, error) {
	if len(key) == 0 {
		return nil, errors.New("hs256 requires signing key")
	}
	if ttl <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Issuer{key: k, ttl: ttl}, nil
}

// Issue signs claims. now anchors the default expiry and the iat claim.
func (i *Issuer) Issue(claims Claims, now time.Time) (string, error) {
	exp := claims.ExpiresAt
	if exp == 0 {
		exp = now.Add(i.ttl).Unix()
	}

	wc := wireClaims{
		Role:   claims.Role,
		UserID: claims.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ExpiresAt: jwt.NewNumericDate(time.Unix(exp, 0)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(i.key)
}
