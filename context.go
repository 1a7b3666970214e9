package goGuard

import "context"

type authorityContextKey struct{}

// WithAuthority provisions a into ctx for consumers such as page guards.
func WithAuthority(ctx context.Context, a *Authority) context.Context {
	return context.WithValue(ctx, authorityContextKey{}, a)
}

// FromContext returns the authority provisioned by [WithAuthority].
//
// Consuming authority state outside its provisioning scope is a programming
// error: FromContext panics with [ErrNoAuthority] rather than returning a
// default.
func FromContext(ctx context.Context) *Authority {
	if ctx == nil {
		panic(ErrNoAuthority)
	}
	a, _ := ctx.Value(authorityContextKey{}).(*Authority)
	if a == nil {
		panic(ErrNoAuthority)
	}
	return a
}

type navigatorContextKey struct{}

// ContextWithNavigator scopes nav to ctx. Login, Logout and page guards
// prefer it over the authority navigator, so a request handler can turn
// navigation into a redirect of its own response.
func ContextWithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorContextKey{}, nav)
}

// NavigatorFor returns the navigator scoped to ctx, or the authority
// navigator when none is.
func (a *Authority) NavigatorFor(ctx context.Context) Navigator {
	if ctx != nil {
		if nav, ok := ctx.Value(navigatorContextKey{}).(Navigator); ok && nav != nil {
			return nav
		}
	}
	return a.navigator
}
