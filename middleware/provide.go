package middleware

import (
	"context"
	"net/http"
	"sync"

	goGuard "github.com/MrEthical07/goGuard"
)

// Provide scopes a to every request, together with a navigator that turns
// the first navigation into a 302 redirect of the response.
func Provide(a *goGuard.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goGuard.WithAuthority(r.Context(), a)
			ctx = goGuard.ContextWithNavigator(ctx, NavigatorFor(w, r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectNavigator redirects one HTTP response. Only the first navigation
// takes effect; the headers are gone after that.
type RedirectNavigator struct {
	w      http.ResponseWriter
	r      *http.Request
	once   sync.Once
	target string
}

// NavigatorFor returns a navigator redirecting w.
func NavigatorFor(w http.ResponseWriter, r *http.Request) *RedirectNavigator {
	return &RedirectNavigator{w: w, r: r}
}

// Navigate writes a 302 redirect to path.
func (n *RedirectNavigator) Navigate(_ context.Context, path string) {
	n.once.Do(func() {
		n.target = path
		http.Redirect(n.w, n.r, path, http.StatusFound)
	})
}

// Redirected reports whether Navigate already ran.
func (n *RedirectNavigator) Redirected() bool {
	return n.target != ""
}

// Target returns the redirect location, if any.
func (n *RedirectNavigator) Target() string {
	return n.target
}
