package goGuard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/goGuard/internal/flows"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
	"go.uber.org/zap"
)

// Authority owns the session of one application instance. It stores tokens,
// revalidates them periodically and answers permission questions.
//
// Login, Logout and Revalidate are serialized. Session snapshots are read
// without blocking on storage I/O.
type Authority struct {
	config     Config
	codec      *token.Codec
	store      *session.Store
	routes     *permission.RouteTable
	navigator  Navigator
	logger     *zap.Logger
	audit      *auditDispatcher
	metrics    *Metrics
	now        func() time.Time
	httpClient *http.Client
	monitor    *monitor

	opMu sync.Mutex

	mu      sync.RWMutex
	current session.Session
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
}

// Session returns the current session snapshot.
func (a *Authority) Session() session.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// IsAuthenticated reports whether the current session is authenticated.
func (a *Authority) IsAuthenticated() bool {
	return a.Session().IsAuthenticated()
}

// IsLoading reports whether the first check is still pending.
func (a *Authority) IsLoading() bool {
	return a.Session().IsLoading()
}

// HasPermission returns IsAuthenticated when roles is empty, otherwise
// whether the session role is one of roles.
func (a *Authority) HasPermission(roles ...string) bool {
	return a.Session().HasPermission(roles...)
}

// Ready is closed once the first check has resolved the loading state.
func (a *Authority) Ready() <-chan struct{} {
	return a.ready
}

// Config returns a copy of the active configuration.
func (a *Authority) Config() Config {
	return cloneConfig(a.config)
}

// Routes returns the frozen route permission table.
func (a *Authority) Routes() *permission.RouteTable {
	return a.routes
}

// Navigator returns the navigator that receives login and logout redirects.
func (a *Authority) Navigator() Navigator {
	return a.navigator
}

// Logger returns the structured logger.
func (a *Authority) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the counters. Callers must not mutate them.
func (a *Authority) Metrics() *Metrics {
	return a.metrics
}

// MetricsSnapshot returns a copy of every counter.
func (a *Authority) MetricsSnapshot() MetricsSnapshot {
	return a.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (a *Authority) AuditDropped() uint64 {
	return a.audit.Dropped()
}

// HTTPClient returns the REST client. With the cookie-backed primary tier the
// client shares its cookie jar, so the token travels with every request.
func (a *Authority) HTTPClient() *http.Client {
	return a.httpClient
}

// Codec returns the token decoder.
func (a *Authority) Codec() *token.Codec {
	return a.codec
}

// Now returns the authority clock.
func (a *Authority) Now() time.Time {
	return a.now()
}

// Login stores raw and authenticates the session with its claims, then
// navigates to the admin landing page for admins and the default landing
// page for everyone else.
//
// An undecodable token clears storage, leaves the session unauthenticated
// and returns an error wrapping [token.ErrMalformed]. A storage failure does
// the same and returns an error wrapping [ErrSessionPersist].
func (a *Authority) Login(ctx context.Context, raw string) error {
	target, err := a.login(ctx, raw)
	if target != "" {
		a.NavigatorFor(ctx).Navigate(ctx, target)
	}
	return err
}

func (a *Authority) login(ctx context.Context, raw string) (string, error) {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	if a.isClosed() {
		return "", ErrAuthorityClosed
	}

	prev := a.Session()
	res := flows.RunLogin(ctx, raw, a.flowDeps())
	a.logClearFailure(res.ClearErr, "login")

	switch res.Outcome {
	case flows.LoginRejected:
		a.metrics.Inc(MetricLoginRejected)
		a.logger.Warn("login token rejected", zap.Error(res.Err))
		a.setSession(res.Session)
		a.emitAudit(ctx, newTransition(AuditLogin, "rejected", prev, res.Session, res.Err))
		return "", res.Err

	case flows.LoginPersistFailed:
		a.metrics.Inc(MetricLoginPersistFailure)
		a.logger.Warn("login storage failed",
			zap.String("role", res.Claims.RoleOrDefault()),
			zap.Error(res.Err),
		)
		a.setSession(res.Session)
		a.emitAudit(ctx, newTransition(AuditLogin, "persist_failed", prev, res.Session, res.Err))
		return "", fmt.Errorf("%w: %v", ErrSessionPersist, res.Err)
	}

	if res.UnknownRole {
		a.metrics.Inc(MetricLoginUnknownRole)
		a.logger.Warn("login with unknown role", zap.String("role", res.Session.Role))
	}
	if res.Expired {
		a.logger.Warn("login with expired token",
			zap.Time("expires_at", res.Claims.Expiry()),
		)
	}

	a.metrics.Inc(MetricLoginSuccess)
	a.setSession(res.Session)
	a.logger.Info("login",
		zap.String("role", res.Session.Role),
		zap.String("user_id", res.Session.UserID),
	)
	a.emitAudit(ctx, newTransition(AuditLogin, "accepted", prev, res.Session, nil))

	if res.Session.Role == permission.RoleAdmin {
		return a.config.Routes.AdminLanding, nil
	}
	return a.config.Routes.DefaultLanding, nil
}

// Logout clears both storage tiers, resets the session and navigates to the
// sign-in page. It is idempotent and also works after Close. A clear failure
// is returned wrapped in [ErrSessionClear]; the session is reset regardless.
func (a *Authority) Logout(ctx context.Context) error {
	err := a.logout(ctx)
	a.NavigatorFor(ctx).Navigate(ctx, a.config.Routes.SignIn)
	return err
}

func (a *Authority) logout(ctx context.Context) error {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	prev := a.Session()
	res := flows.RunLogout(ctx, a.flowDeps())
	a.logClearFailure(res.ClearErr, "logout")
	a.setSession(res.Session)

	a.metrics.Inc(MetricLogout)
	a.logger.Info("logout", zap.String("user_id", prev.UserID))
	if res.ClearErr != nil {
		a.emitAudit(ctx, newTransition(AuditLogout, "clear_failed", prev, res.Session, res.ClearErr))
		return fmt.Errorf("%w: %v", ErrSessionClear, res.ClearErr)
	}
	a.emitAudit(ctx, newTransition(AuditLogout, "cleared", prev, res.Session, nil))
	return nil
}

// Revalidate runs one monitor check synchronously and returns the resulting
// session. After Close it returns the current session untouched.
func (a *Authority) Revalidate(ctx context.Context) session.Session {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	if a.isClosed() {
		return a.Session()
	}

	prev := a.Session()
	res := flows.RunRevalidate(ctx, a.flowDeps())
	a.logClearFailure(res.ClearErr, "revalidate")

	switch res.Outcome {
	case flows.RevalidateReadFailed:
		a.metrics.Inc(MetricRevalidateStorageError)
		a.logger.Warn("session storage unreadable", zap.Error(res.Err))
		if prev.IsLoading() {
			a.setSession(session.Unauthenticated())
		}
		a.markReady()
		return a.Session()
	case flows.RevalidateConfirmed:
		a.metrics.Inc(MetricRevalidateConfirmed)
	case flows.RevalidateExpired:
		a.metrics.Inc(MetricRevalidateInvalidated)
		a.logger.Info("session token expired", zap.Time("expires_at", res.Claims.Expiry()))
	case flows.RevalidateMalformed:
		a.metrics.Inc(MetricRevalidateInvalidated)
		a.logger.Warn("stored token malformed", zap.Error(res.Err))
	case flows.RevalidateFallbackRestored:
		a.metrics.Inc(MetricRevalidateFallbackRestored)
		if !prev.IsAuthenticated() {
			a.logger.Info("session restored from fallback", zap.String("role", res.Session.Role))
		}
	case flows.RevalidateNoSession:
		a.metrics.Inc(MetricRevalidateNoSession)
	}

	a.setSession(res.Session)
	a.markReady()

	if prev != res.Session && (!prev.IsLoading() || res.Session.IsAuthenticated()) {
		a.emitAudit(ctx, newTransition(AuditRevalidate, res.Outcome.String(), prev, res.Session, res.Err))
	}
	return res.Session
}

func (a *Authority) tick(ctx context.Context) {
	a.Revalidate(ctx)
}

// Close stops the monitor and drains pending audit events. Later Login
// calls fail with [ErrAuthorityClosed]. Close is idempotent.
func (a *Authority) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.monitor.stop()
	a.audit.Close()
	a.markReady()
}

// IsClosed reports whether Close was called.
func (a *Authority) IsClosed() bool {
	return a.isClosed()
}

func (a *Authority) isClosed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.closed
}

func (a *Authority) setSession(s session.Session) {
	a.mu.Lock()
	a.current = s
	a.mu.Unlock()
}

func (a *Authority) markReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

func (a *Authority) flowDeps() flows.Deps {
	return flows.Deps{
		Decode:      a.codec.Decode,
		Now:         a.now,
		IsKnownRole: permission.IsKnownRole,
		Store:       a.store,
	}
}

func (a *Authority) logClearFailure(err error, op string) {
	if err == nil {
		return
	}
	a.metrics.Inc(MetricStorageClearFailure)
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if errors.Is(err, session.ErrStoreUnavailable) {
		fields = append(fields, zap.Bool("store_unavailable", true))
	}
	a.logger.Warn("session storage clear failed", fields...)
}

func (a *Authority) emitAudit(ctx context.Context, event AuditEvent) {
	if a.audit == nil {
		return
	}
	event.Timestamp = a.now()
	a.audit.Emit(ctx, event)
}
