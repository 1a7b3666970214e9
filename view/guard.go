package view

import (
	"context"
	"io"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/a-h/templ"
)

// LoadingIndicator is rendered by [RequireRole] until the first session
// check resolves.
var LoadingIndicator templ.Component = templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, `<div class="auth-loading" role="status" aria-busy="true">Verifying access...</div>`)
	return err
})

// RequireRole renders children only for an authenticated session holding
// role. An empty role admits any authenticated session.
//
// While the session is loading it renders [LoadingIndicator] and does not
// navigate. An unauthenticated session is sent to the sign-in page and a
// wrong role to the unauthorized page; neither renders anything.
func RequireRole(role string, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		a := goGuard.FromContext(ctx)
		s := a.Session()
		routes := a.Config().Routes

		switch {
		case s.IsLoading():
			return LoadingIndicator.Render(ctx, w)
		case !s.IsAuthenticated():
			a.NavigatorFor(ctx).Navigate(ctx, routes.SignIn)
			return nil
		case role != "" && s.Role != role:
			a.NavigatorFor(ctx).Navigate(ctx, routes.Unauthorized)
			return nil
		}
		return render(ctx, w, children)
	})
}

// RequireAdmin is RequireRole limited to the admin role.
func RequireAdmin(children templ.Component) templ.Component {
	return RequireRole(permission.RoleAdmin, children)
}

// ForRoles renders children when the session may see them and fallback
// otherwise. A nil fallback renders nothing.
//
// Unauthenticated sessions always get fallback. An empty roles list admits
// any authenticated session. A list of exactly ["admin"] admits only admins;
// any other list admits roles it contains.
func ForRoles(roles []string, children, fallback templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := goGuard.FromContext(ctx).Session()

		if allowed(s.IsAuthenticated(), s.Role, roles) {
			return render(ctx, w, children)
		}
		return render(ctx, w, fallback)
	})
}

func allowed(authenticated bool, role string, roles []string) bool {
	if !authenticated {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	if len(roles) == 1 && roles[0] == permission.RoleAdmin {
		return role == permission.RoleAdmin
	}
	return permission.Contains(roles, role)
}

func render(ctx context.Context, w io.Writer, c templ.Component) error {
	if c == nil {
		return nil
	}
	return c.Render(ctx, w)
}
