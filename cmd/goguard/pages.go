package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/middleware"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/view"
	"github.com/a-h/templ"
)

func html(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func layout(title string, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1>",
			templ.EscapeString(title), templ.EscapeString(title)); err != nil {
			return err
		}
		for _, c := range body {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

var logoutForm = html(`<form method="post" action="/logout"><button type="submit">Sign out</button></form>`)

// sessionBanner shows who is signed in.
var sessionBanner = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	s := goGuard.FromContext(ctx).Session()
	_, err := fmt.Fprintf(w, `<p class="session">%s as <strong>%s</strong> (%s)</p>`,
		s.Status, templ.EscapeString(s.Role), templ.EscapeString(s.UserID))
	return err
})

func signInPage(errs map[string][]string) templ.Component {
	return layout("Sign in",
		errorList(errs),
		html(`<form method="post" action="/signin">`+
			`<label>Phone <input name="phone" type="tel"></label>`+
			`<label>Password <input name="password" type="password"></label>`+
			`<button type="submit">Sign in</button></form>`),
	)
}

func errorList(errs map[string][]string) templ.Component {
	if len(errs) == 0 {
		return nil
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		var buf bytes.Buffer
		buf.WriteString(`<ul class="errors">`)
		for _, f := range fields {
			for _, msg := range errs[f] {
				fmt.Fprintf(&buf, "<li>%s: %s</li>", templ.EscapeString(f), templ.EscapeString(msg))
			}
		}
		buf.WriteString("</ul>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

var (
	homePage = layout("goGuard demo",
		html(`<p><a href="/signin">Sign in</a> or open the <a href="/protected/dashboard">dashboard</a>.</p>`))

	unauthorizedPage = layout("Unauthorized",
		html(`<p>Your role does not grant access to that page.</p><p><a href="/protected/dashboard">Dashboard</a></p>`))

	dashboardPage = layout("Dashboard",
		view.RequireRole("", templ.Join(
			sessionBanner,
			view.ForRoles([]string{permission.RoleAdmin},
				html(`<p><a href="/protected/admin">Administration</a></p>`),
				html(`<p>Contact an administrator for elevated access.</p>`)),
			logoutForm,
		)),
	)
)

func adminPage(title, body string) templ.Component {
	return layout(title, view.RequireAdmin(templ.Join(sessionBanner, html(body), logoutForm)))
}

// page renders c into a buffer first, so a guard redirect issued while
// rendering is the only response written.
func page(c templ.Component) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := c.Render(r.Context(), &buf); err != nil {
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		if nav, ok := goGuard.FromContext(r.Context()).NavigatorFor(r.Context()).(*middleware.RedirectNavigator); ok && nav.Redirected() {
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}
