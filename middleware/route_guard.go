package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/token"
	"go.uber.org/zap"
)

// Action is the result class of a route decision.
type Action int

const (
	// Allow lets the request through.
	Allow Action = iota
	// RedirectSignIn sends the client to the sign-in page.
	RedirectSignIn
	// RedirectUnauthorized sends the client to the unauthorized page.
	RedirectUnauthorized
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectSignIn:
		return "signin"
	case RedirectUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the outcome of [RouteGuard.Evaluate]. Claims is set whenever
// the token decoded and had not expired.
type Decision struct {
	Action Action
	Target string
	Claims *token.Claims
	Reason string
}

// RouteGuard decides navigation into the protected area from the token
// alone. Paths outside the protected prefix are never inspected.
type RouteGuard struct {
	routes     goGuard.RoutesConfig
	table      *permission.RouteTable
	codec      *token.Codec
	now        func() time.Time
	metrics    *goGuard.Metrics
	logger     *zap.Logger
	cookieName string
}

// NewRouteGuard returns a guard using the route configuration, codec, clock,
// metrics and logger of a.
func NewRouteGuard(a *goGuard.Authority) *RouteGuard {
	cfg := a.Config()
	return &RouteGuard{
		routes:     cfg.Routes,
		table:      a.Routes(),
		codec:      a.Codec(),
		now:        a.Now,
		metrics:    a.Metrics(),
		logger:     a.Logger(),
		cookieName: cfg.Session.CookieName,
	}
}

// Evaluate applies the navigation rules to path. raw is the token cookie
// value; present reports whether the cookie exists at all.
func (g *RouteGuard) Evaluate(path, raw string, present bool) Decision {
	if !strings.HasPrefix(path, g.routes.ProtectedPrefix) {
		return Decision{Action: Allow, Reason: "public"}
	}
	if !present || raw == "" {
		return g.signIn("no_token")
	}

	claims, err := g.codec.Decode(raw)
	if err != nil {
		return g.signIn("malformed")
	}
	if token.IsExpired(claims, g.now()) {
		return g.signIn("expired")
	}

	role := claims.RoleOrDefault()
	if strings.Contains(path, g.routes.AdminMarker) && role != permission.RoleAdmin {
		return g.unauthorized(claims, "admin_area")
	}
	if !g.table.Allows(path, role) {
		return g.unauthorized(claims, "route_table")
	}

	return Decision{Action: Allow, Claims: claims, Reason: "granted"}
}

func (g *RouteGuard) signIn(reason string) Decision {
	return Decision{Action: RedirectSignIn, Target: g.routes.SignIn, Reason: reason}
}

func (g *RouteGuard) unauthorized(claims *token.Claims, reason string) Decision {
	return Decision{Action: RedirectUnauthorized, Target: g.routes.Unauthorized, Claims: claims, Reason: reason}
}

// Middleware wraps next with the route decision. Redirects use 302 Found.
func (g *RouteGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, present := g.readToken(r)
		d := g.Evaluate(r.URL.Path, raw, present)

		switch d.Action {
		case RedirectSignIn:
			g.metrics.Inc(goGuard.MetricRouteSignIn)
		case RedirectUnauthorized:
			g.metrics.Inc(goGuard.MetricRouteUnauthorized)
		default:
			g.metrics.Inc(goGuard.MetricRouteAllowed)
		}

		if d.Action != Allow {
			g.logger.Debug("route redirect",
				zap.String("path", r.URL.Path),
				zap.String("target", d.Target),
				zap.String("reason", d.Reason),
			)
			http.Redirect(w, r, d.Target, http.StatusFound)
			return
		}

		if d.Claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), claimsContextKey{}, d.Claims))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *RouteGuard) readToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(g.cookieName)
	if errors.Is(err, http.ErrNoCookie) || c == nil {
		return "", false
	}
	return c.Value, true
}

// Guard is shorthand for NewRouteGuard(a).Middleware.
func Guard(a *goGuard.Authority) func(http.Handler) http.Handler {
	return NewRouteGuard(a).Middleware
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims decoded by the route guard.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return c, ok
}
