package goGuard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration of an [Authority]. It is cloned
// by [Builder.Build] and treated as immutable afterwards.
type Config struct {
	// Environment is "development" or "production". Cookies are marked
	// Secure everywhere except development.
	Environment string `env:"GOGUARD_ENV"`
	Session     SessionConfig
	Monitor     MonitorConfig
	Routes      RoutesConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the storage tiers.
type SessionConfig struct {
	// BaseURL is the REST backend origin. The cookie tier scopes the token
	// cookie to it.
	BaseURL     string `env:"GOGUARD_BASE_URL"`
	CookieName  string `env:"GOGUARD_COOKIE_NAME"`
	RedisPrefix string `env:"GOGUARD_REDIS_PREFIX"`
	// ClientID namespaces Redis keys. Empty means a random ID per Authority.
	ClientID string `env:"GOGUARD_CLIENT_ID"`
}

// MonitorConfig configures periodic revalidation.
type MonitorConfig struct {
	Interval time.Duration `env:"GOGUARD_MONITOR_INTERVAL"`
}

// RoutesConfig names the redirect targets and the protected area.
type RoutesConfig struct {
	ProtectedPrefix string `env:"GOGUARD_PROTECTED_PREFIX"`
	AdminMarker     string `env:"GOGUARD_ADMIN_MARKER"`
	SignIn          string `env:"GOGUARD_SIGNIN_PATH"`
	Unauthorized    string `env:"GOGUARD_UNAUTHORIZED_PATH"`
	AdminLanding    string `env:"GOGUARD_ADMIN_LANDING"`
	DefaultLanding  string `env:"GOGUARD_DEFAULT_LANDING"`
	// Permissions maps exact protected paths to the roles allowed on them.
	// Paths not listed are allowed for any authenticated role.
	Permissions map[string][]string
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"GOGUARD_AUDIT_ENABLED"`
	BufferSize int  `env:"GOGUARD_AUDIT_BUFFER"`
	DropIfFull bool `env:"GOGUARD_AUDIT_DROP_IF_FULL"`
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool `env:"GOGUARD_METRICS_ENABLED"`
}

const (
	// EnvDevelopment disables Secure cookies.
	EnvDevelopment = "development"
	// EnvProduction marks every cookie Secure.
	EnvProduction = "production"
)

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Environment: EnvDevelopment,
		Session: SessionConfig{
			BaseURL:     "http://localhost:8000",
			CookieName:  session.TokenKey,
			RedisPrefix: "gg",
		},
		Monitor: MonitorConfig{
			Interval: 60 * time.Second,
		},
		Routes: RoutesConfig{
			ProtectedPrefix: "/protected",
			AdminMarker:     "/admin",
			SignIn:          "/signin",
			Unauthorized:    "/unauthorized",
			AdminLanding:    "/protected/admin",
			DefaultLanding:  "/protected/dashboard",
			Permissions:     permission.DefaultRoutes(),
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the configuration of a local development setup
// against a backend on localhost:8000.
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigFromEnv overlays GOGUARD_* environment variables on
// [DefaultConfig]. Unset variables keep their defaults.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Routes.Permissions != nil {
		out.Routes.Permissions = make(map[string][]string, len(cfg.Routes.Permissions))
		for path, roles := range cfg.Routes.Permissions {
			out.Routes.Permissions[path] = append([]string(nil), roles...)
		}
	}
	return out
}

// SecureCookies reports whether cookies must carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Environment != EnvDevelopment
}

// RouteTable builds the frozen permission table from Routes.Permissions.
func (c *Config) RouteTable() (*permission.RouteTable, error) {
	return permission.NewRouteTableFrom(c.Routes.Permissions)
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid Environment %q", c.Environment)
	}

	// Session
	base, err := url.Parse(c.Session.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return errors.New("Session BaseURL must be an absolute URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return errors.New("Session BaseURL must use http or https")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session CookieName must not be empty")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, ": ") {
		return errors.New("Session RedisPrefix must not contain ':' or spaces")
	}

	// Monitor
	if c.Monitor.Interval <= 0 {
		return errors.New("Monitor Interval must be > 0")
	}

	// Routes
	if !strings.HasPrefix(c.Routes.ProtectedPrefix, "/") {
		return errors.New("Routes ProtectedPrefix must start with /")
	}
	if !strings.HasPrefix(c.Routes.AdminMarker, "/") {
		return errors.New("Routes AdminMarker must start with /")
	}
	for name, p := range map[string]string{
		"SignIn":         c.Routes.SignIn,
		"Unauthorized":   c.Routes.Unauthorized,
		"AdminLanding":   c.Routes.AdminLanding,
		"DefaultLanding": c.Routes.DefaultLanding,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("Routes %s must start with /", name)
		}
	}
	if strings.HasPrefix(c.Routes.SignIn, c.Routes.ProtectedPrefix) {
		return errors.New("Routes SignIn must be outside the protected prefix")
	}
	if _, err := c.RouteTable(); err != nil {
		return fmt.Errorf("Routes Permissions: %w", err)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
