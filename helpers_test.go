package goGuard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testClientID = "test-client"

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

func (n *recordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type authorityTest struct {
	authority *Authority
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	nav       *recordingNavigator
	logs      *observer.ObservedLogs
	issuer    *token.Issuer
}

// fallbackTier addresses the same Redis namespace as the authority under test.
func (at *authorityTest) fallbackTier() *session.RedisTier {
	return session.NewRedisTier(at.rdb, "gg", testClientID)
}

func (at *authorityTest) mint(t *testing.T, role, userID string, exp time.Time) string {
	t.Helper()
	raw, err := at.issuer.Issue(token.Claims{Role: role, UserID: userID, ExpiresAt: exp.Unix()}, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return raw
}

type authorityOption func(*Builder)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.ClientID = testClientID
	cfg.Monitor.Interval = time.Hour
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// newAuthorityTest seeds storage via seed before Build, then waits for the
// first check.
func newAuthorityTest(t *testing.T, seed func(*authorityTest), opts ...authorityOption) (*authorityTest, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	core, logs := observer.New(zapcore.InfoLevel)
	iss, err := token.NewIssuer([]byte("authority-test-key"), time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	at := &authorityTest{
		mr:     mr,
		rdb:    rdb,
		nav:    &recordingNavigator{},
		logs:   logs,
		issuer: iss,
	}
	if seed != nil {
		seed(at)
	}

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithNavigator(at.nav).
		WithLogger(zap.New(core))
	for _, opt := range opts {
		opt(b)
	}

	a, err := b.Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}
	at.authority = a
	waitReady(t, a)

	return at, func() {
		a.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func waitReady(t *testing.T, a *Authority) {
	t.Helper()
	select {
	case <-a.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("authority did not resolve loading state")
	}
}
