package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// clientCookieName identifies the browser whose authority serves a request.
const clientCookieName = "gg_client"

const (
	defaultIdleTimeout = 30 * time.Minute
	readyTimeout       = 2 * time.Second
)

// browserSession is the authority of one browser plus the route guard built
// from it.
type browserSession struct {
	authority *goGuard.Authority
	guard     *middleware.RouteGuard
	lastSeen  time.Time
}

// sessionRegistry keeps one authority per browser. An authority holds the
// state of a single client, so the demo server never shares one between
// cookie holders. Every authority writes its fallback tier under its own
// client ID in the shared Redis and counts into shared metrics.
type sessionRegistry struct {
	base    goGuard.Config
	rdb     redis.UniversalClient
	logger  *zap.Logger
	audit   goGuard.AuditSink
	metrics *goGuard.Metrics
	idle    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*browserSession
	closed  bool
	// dropped keeps the audit drops of evicted authorities.
	dropped uint64

	stop chan struct{}
	done chan struct{}
}

func newSessionRegistry(cfg goGuard.Config, rdb redis.UniversalClient, logger *zap.Logger, audit goGuard.AuditSink, idle time.Duration) *sessionRegistry {
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	reg := &sessionRegistry{
		base:    cfg,
		rdb:     rdb,
		logger:  logger,
		audit:   audit,
		metrics: goGuard.NewMetrics(cfg.Metrics),
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*browserSession),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go reg.sweep()
	return reg
}

// get returns the session of browser id, building it on first use.
func (reg *sessionRegistry) get(ctx context.Context, id string) (*browserSession, error) {
	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return nil, goGuard.ErrAuthorityClosed
	}
	entry, ok := reg.entries[id]
	if !ok {
		cfg := reg.base
		cfg.Session.ClientID = id
		a, err := goGuard.New().
			WithConfig(cfg).
			WithRedis(reg.rdb).
			WithLogger(reg.logger.With(zap.String("client_id", id))).
			WithAuditSink(reg.audit).
			WithMetrics(reg.metrics).
			Build()
		if err != nil {
			reg.mu.Unlock()
			return nil, fmt.Errorf("build authority: %w", err)
		}
		entry = &browserSession{authority: a, guard: middleware.NewRouteGuard(a)}
		reg.entries[id] = entry
	}
	entry.lastSeen = reg.now()
	reg.mu.Unlock()

	select {
	case <-entry.authority.Ready():
	case <-time.After(readyTimeout):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return entry, nil
}

// Middleware resolves the browser from its client cookie, issuing one when
// missing or malformed, and serves the request through that browser's
// authority and route guard.
func (reg *sessionRegistry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(clientCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   reg.base.SecureCookies(),
				SameSite: http.SameSiteStrictMode,
			})
		}

		entry, err := reg.get(r.Context(), id)
		if err != nil {
			reg.logger.Error("browser session unavailable", zap.String("client_id", id), zap.Error(err))
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		middleware.Provide(entry.authority)(entry.guard.Middleware(next)).ServeHTTP(w, r)
	})
}

// Len returns the number of live browser sessions.
func (reg *sessionRegistry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.entries)
}

// MetricsSnapshot reads the counters shared by every browser.
func (reg *sessionRegistry) MetricsSnapshot() goGuard.MetricsSnapshot {
	return reg.metrics.Snapshot()
}

// AuditDropped sums audit drops over live and evicted authorities.
func (reg *sessionRegistry) AuditDropped() uint64 {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	total := reg.dropped
	for _, entry := range reg.entries {
		total += entry.authority.AuditDropped()
	}
	return total
}

func (reg *sessionRegistry) sweep() {
	defer close(reg.done)
	ticker := time.NewTicker(reg.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-reg.stop:
			return
		case <-ticker.C:
			reg.evictIdle()
		}
	}
}

// evictIdle closes authorities not seen for the idle timeout. Their fallback
// records stay in Redis, so a returning browser is restored on its first
// check.
func (reg *sessionRegistry) evictIdle() {
	reg.mu.Lock()
	cutoff := reg.now().Add(-reg.idle)
	var evicted []*goGuard.Authority
	for id, entry := range reg.entries {
		if entry.lastSeen.Before(cutoff) {
			evicted = append(evicted, entry.authority)
			delete(reg.entries, id)
		}
	}
	reg.mu.Unlock()

	for _, a := range evicted {
		a.Close()
		reg.mu.Lock()
		reg.dropped += a.AuditDropped()
		reg.mu.Unlock()
	}
	if len(evicted) > 0 {
		reg.logger.Debug("evicted idle browser sessions", zap.Int("count", len(evicted)))
	}
}

// Close stops the sweeper and closes every authority.
func (reg *sessionRegistry) Close() {
	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return
	}
	reg.closed = true
	entries := reg.entries
	reg.entries = make(map[string]*browserSession)
	reg.mu.Unlock()

	close(reg.stop)
	<-reg.done
	for _, entry := range entries {
		entry.authority.Close()
	}
}
