package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// NewCookieJar returns a jar suitable for [CookieTier] and for the REST
// client sharing it.
func NewCookieJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// TokenCookie builds the primary-tier cookie. The cookie expires with the
// token, is hidden from scripts, is only sent on same-site requests, and is
// marked secure unless secure is false (local development).
func TokenCookie(name, token string, expiresAt time.Time, secure bool) *http.Cookie {
	if name == "" {
		name = TokenKey
	}
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredTokenCookie builds a cookie that deletes the primary-tier cookie.
func ExpiredTokenCookie(name string, secure bool) *http.Cookie {
	c := TokenCookie(name, "", time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}

// CookieTier is a [PrimaryTier] kept in an HTTP cookie jar, so the token is
// attached to every request the sharing client sends to the backend.
type CookieTier struct {
	jar    http.CookieJar
	url    *url.URL
	name   string
	secure bool
}

// NewCookieTier returns a tier scoping the token cookie to baseURL.
func NewCookieTier(jar http.CookieJar, baseURL, name string, secure bool) (*CookieTier, error) {
	if jar == nil {
		return nil, errors.New("cookie jar required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("cookie tier requires an absolute base URL")
	}
	if name == "" {
		name = TokenKey
	}
	return &CookieTier{
		jar:    jar,
		url:    u,
		name:   name,
		secure: secure,
	}, nil
}

// Jar returns the jar holding the token cookie.
func (t *CookieTier) Jar() http.CookieJar {
	return t.jar
}

// WritePrimary stores token until expiresAt. An expiry in the past removes
// the cookie instead.
func (t *CookieTier) WritePrimary(_ context.Context, token string, expiresAt time.Time) error {
	t.jar.SetCookies(t.url, []*http.Cookie{TokenCookie(t.name, token, expiresAt, t.secure)})
	return nil
}

// ReadPrimary returns the token cookie if the jar still holds it.
func (t *CookieTier) ReadPrimary(context.Context) (string, bool, error) {
	for _, c := range t.jar.Cookies(t.url) {
		if c.Name == t.name && c.Value != "" {
			return c.Value, true, nil
		}
	}
	return "", false, nil
}

// ClearPrimary removes the token cookie.
func (t *CookieTier) ClearPrimary(context.Context) error {
	t.jar.SetCookies(t.url, []*http.Cookie{ExpiredTokenCookie(t.name, t.secure)})
	return nil
}
