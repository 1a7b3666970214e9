package goGuard

import "context"

// Navigator receives the navigation side effects of login, logout and page
// guards.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	if f != nil {
		f(ctx, path)
	}
}

// NopNavigator discards navigation.
type NopNavigator struct{}

// Navigate does nothing.
func (NopNavigator) Navigate(context.Context, string) {}
