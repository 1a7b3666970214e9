package goGuard

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultHTTPTimeout = 10 * time.Second

// Builder assembles an [Authority]. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	primary  session.PrimaryTier
	fallback session.FallbackTier

	navigator Navigator
	logger    *zap.Logger
	auditSink AuditSink
	metrics   *Metrics
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. cfg is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the fallback tier with client unless [Builder.WithFallback]
// was called.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrimary overrides the cookie-backed primary tier.
func (b *Builder) WithPrimary(tier session.PrimaryTier) *Builder {
	b.primary = tier
	return b
}

// WithFallback sets the fallback tier.
func (b *Builder) WithFallback(tier session.FallbackTier) *Builder {
	b.fallback = tier
	return b
}

// WithNavigator receives login, logout and guard redirects.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination. It is only used when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetrics makes the authority count into m instead of its own
// counters, so several authorities can share one exporter. Config.Metrics
// is then ignored.
func (b *Builder) WithMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// WithClock overrides the time source used for expiry checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the storage tiers and starts the
// session monitor. The returned Authority starts in the loading state; its
// first check runs immediately in the background.
func (b *Builder) Build() (*Authority, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	routes, err := cfg.RouteTable()
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- FALLBACK TIER --------
	fallback := b.fallback
	if fallback == nil {
		if b.redis == nil {
			return nil, ErrFallbackTierRequired
		}
		fallback = session.NewRedisTier(b.redis, cfg.Session.RedisPrefix, cfg.Session.ClientID).WithClock(now)
	}

	// -------- PRIMARY TIER --------
	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	primary := b.primary
	if primary == nil {
		jar, err := session.NewCookieJar()
		if err != nil {
			return nil, err
		}
		tier, err := session.NewCookieTier(jar, cfg.Session.BaseURL, cfg.Session.CookieName, cfg.SecureCookies())
		if err != nil {
			return nil, err
		}
		primary = tier
	}
	if ct, ok := primary.(*session.CookieTier); ok {
		httpClient.Jar = ct.Jar()
	}

	store, err := session.NewStore(primary, fallback)
	if err != nil {
		return nil, err
	}

	for _, w := range cfg.Lint() {
		if w.Severity >= LintHigh {
			logger.Warn("configuration lint", zap.String("code", w.Code), zap.String("detail", w.Message))
			continue
		}
		logger.Debug("configuration lint", zap.String("code", w.Code), zap.String("detail", w.Message))
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = NewMetrics(cfg.Metrics)
	}

	a := &Authority{
		config:     cfg,
		codec:      token.NewCodec(),
		store:      store,
		routes:     routes,
		navigator:  b.navigator,
		logger:     logger,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    metrics,
		now:        now,
		httpClient: httpClient,
		current:    session.Loading(),
		ready:      make(chan struct{}),
	}
	if a.navigator == nil {
		a.navigator = NopNavigator{}
	}
	a.monitor = startMonitor(cfg.Monitor.Interval, a.tick)

	b.built = true

	return a, nil
}
