package view

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
	"github.com/a-h/templ"
)

// memTier holds both tiers in memory. Reads block until gate is closed.
type memTier struct {
	mu    sync.Mutex
	gate  chan struct{}
	token string
	rec   session.Record
}

func newMemTier(open bool) *memTier {
	m := &memTier{gate: make(chan struct{})}
	if open {
		close(m.gate)
	}
	return m
}

func (m *memTier) WritePrimary(_ context.Context, tok string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	return nil
}

func (m *memTier) ReadPrimary(ctx context.Context) (string, bool, error) {
	select {
	case <-m.gate:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *memTier) ClearPrimary(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memTier) WriteFallback(_ context.Context, rec session.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

func (m *memTier) ReadFallback(context.Context) (session.Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.rec.IsAuthenticated, nil
}

func (m *memTier) ClearFallback(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = session.Record{}
	return nil
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func newViewTest(t *testing.T, tier *memTier) (*goGuard.Authority, *recordingNavigator, func()) {
	t.Helper()
	nav := &recordingNavigator{}
	cfg := goGuard.DefaultConfig()
	cfg.Monitor.Interval = time.Hour
	a, err := goGuard.New().
		WithConfig(cfg).
		WithPrimary(tier).
		WithFallback(tier).
		WithNavigator(nav).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return a, nav, a.Close
}

// loginAs authenticates a through a minted token and forgets the landing
// navigation.
func loginAs(t *testing.T, a *goGuard.Authority, nav *recordingNavigator, role string) {
	t.Helper()
	select {
	case <-a.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("authority not ready")
	}
	if role == "" {
		return
	}
	iss, err := token.NewIssuer([]byte("view-test-key"), time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	raw, err := iss.Issue(token.Claims{Role: role, UserID: "v-1"}, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := a.Login(context.Background(), raw); err != nil {
		t.Fatalf("Login: %v", err)
	}
	nav.mu.Lock()
	nav.paths = nil
	nav.mu.Unlock()
}

func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func renderString(t *testing.T, a *goGuard.Authority, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(goGuard.WithAuthority(context.Background(), a), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestRequireRoleLoadingShowsIndicator(t *testing.T) {
	tier := newMemTier(false)
	a, nav, cleanup := newViewTest(t, tier)
	defer func() {
		close(tier.gate)
		cleanup()
	}()

	got := renderString(t, a, RequireRole("admin", text("secret")))
	if !strings.Contains(got, `role="status"`) || strings.Contains(got, "secret") {
		t.Fatalf("expected loading indicator, got %q", got)
	}
	if len(nav.Paths()) != 0 {
		t.Fatalf("loading must not navigate, got %v", nav.Paths())
	}
}

func TestRequireRoleUnauthenticatedNavigatesToSignIn(t *testing.T) {
	a, nav, cleanup := newViewTest(t, newMemTier(true))
	defer cleanup()
	loginAs(t, a, nav, "")

	if got := renderString(t, a, RequireRole("admin", text("secret"))); got != "" {
		t.Fatalf("expected nothing rendered, got %q", got)
	}
	if p := nav.Paths(); len(p) != 1 || p[0] != "/signin" {
		t.Fatalf("expected /signin, got %v", p)
	}
}

func TestRequireRoleWrongRoleNavigatesToUnauthorized(t *testing.T) {
	a, nav, cleanup := newViewTest(t, newMemTier(true))
	defer cleanup()
	loginAs(t, a, nav, "user")

	if got := renderString(t, a, RequireAdmin(text("secret"))); got != "" {
		t.Fatalf("expected nothing rendered, got %q", got)
	}
	if p := nav.Paths(); len(p) != 1 || p[0] != "/unauthorized" {
		t.Fatalf("expected /unauthorized, got %v", p)
	}
}

func TestRequireRoleMatchingRoleRendersChildren(t *testing.T) {
	a, nav, cleanup := newViewTest(t, newMemTier(true))
	defer cleanup()
	loginAs(t, a, nav, "admin")

	if got := renderString(t, a, RequireRole("admin", text("secret"))); got != "secret" {
		t.Fatalf("expected children, got %q", got)
	}
	if got := renderString(t, a, RequireRole("", text("any"))); got != "any" {
		t.Fatalf("empty role must admit authenticated sessions, got %q", got)
	}
	if len(nav.Paths()) != 0 {
		t.Fatalf("granted render must not navigate, got %v", nav.Paths())
	}
}

func TestForRoles(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		roles []string
		want  string
	}{
		{name: "unauthenticated gets fallback", role: "", roles: nil, want: "fallback"},
		{name: "empty roles admit user", role: "user", roles: nil, want: "children"},
		{name: "admin only hides from user", role: "user", roles: []string{"admin"}, want: "fallback"},
		{name: "admin only shows admin", role: "admin", roles: []string{"admin"}, want: "children"},
		{name: "listed role shown", role: "user", roles: []string{"user", "admin"}, want: "children"},
		{name: "unlisted role hidden", role: "user", roles: []string{"manager"}, want: "fallback"},
		{name: "unknown role in list", role: "manager", roles: []string{"admin", "manager"}, want: "children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, nav, cleanup := newViewTest(t, newMemTier(true))
			defer cleanup()
			loginAs(t, a, nav, tt.role)

			got := renderString(t, a, ForRoles(tt.roles, text("children"), text("fallback")))
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if len(nav.Paths()) != 0 {
				t.Fatalf("ForRoles must never navigate, got %v", nav.Paths())
			}
		})
	}
}

func TestForRolesNilFallbackRendersNothing(t *testing.T) {
	a, nav, cleanup := newViewTest(t, newMemTier(true))
	defer cleanup()
	loginAs(t, a, nav, "user")

	if got := renderString(t, a, ForRoles([]string{"admin"}, text("children"), nil)); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestGuardsPanicWithoutAuthority(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, goGuard.ErrNoAuthority) {
			t.Fatalf("expected ErrNoAuthority panic, got %v", r)
		}
	}()
	_ = ForRoles(nil, text("x"), nil).Render(context.Background(), io.Discard)
}
