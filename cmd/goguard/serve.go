package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/client"
	promexport "github.com/MrEthical07/goGuard/metrics/export/prometheus"
	"github.com/MrEthical07/goGuard/session"
	"github.com/MrEthical07/goGuard/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	addr        string
	redisAddr   string
	devBackend  bool
	backendAddr string
	auditJSON   string
	idle        time.Duration
}

func serveCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guarded demo application",
		Long: `Serve a small application whose /protected pages are guarded by the
route guard, page guards and conditional rendering, plus /metrics.

Each browser gets its own authority, keyed by the gg_client cookie.
Without --redis the fallback tier lives in an in-process Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "Application listen address")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "Redis address for the fallback tier")
	cmd.Flags().BoolVar(&f.devBackend, "dev-backend", true, "Serve an in-memory sign-in backend")
	cmd.Flags().StringVar(&f.backendAddr, "backend-addr", ":8000", "Development backend listen address")
	cmd.Flags().StringVar(&f.auditJSON, "audit-json", "", "Write session transitions as JSON lines to this file (- for stdout); enables auditing")
	cmd.Flags().DurationVar(&f.idle, "idle-timeout", defaultIdleTimeout, "Close a browser's authority after this long without requests")

	return cmd
}

func runServe(ctx context.Context, g *globalFlags, f *serveFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Environment, g.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}

	sink, closeSink, err := auditSink(f.auditJSON, logger, os.Stdout)
	if err != nil {
		return err
	}
	defer closeSink()
	if f.auditJSON != "" {
		cfg.Audit.Enabled = true
	}

	rdb, closeRedis, err := newRedis(f.redisAddr)
	if err != nil {
		return err
	}
	defer closeRedis()

	reg := newSessionRegistry(cfg, rdb, logger, sink, f.idle)
	defer reg.Close()

	app, err := newApp(reg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{{Addr: f.addr, Handler: app, ReadHeaderTimeout: 5 * time.Second}}
	if f.devBackend {
		issuer, err := token.NewIssuer(devSigningKey(), time.Hour)
		if err != nil {
			return err
		}
		backend := newDevBackend(issuer, logger.Named("backend"))
		servers = append(servers, &http.Server{Addr: f.backendAddr, Handler: backend.routes(), ReadHeaderTimeout: 5 * time.Second})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		logger.Info("listening", zap.String("addr", srv.Addr))
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	return err
}

// auditSink logs transitions through logger, or writes them as JSON lines
// when path is set. "-" selects stdout.
func auditSink(path string, logger *zap.Logger, stdout io.Writer) (goGuard.AuditSink, func(), error) {
	switch path {
	case "":
		return goGuard.NewZapSink(logger.Named("audit")), func() {}, nil
	case "-":
		return goGuard.NewJSONWriterSink(stdout), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return goGuard.NewJSONWriterSink(f), func() { _ = f.Close() }, nil
}

// newRedis connects to addr, or to an in-process Redis when addr is empty.
func newRedis(addr string) (*redis.Client, func(), error) {
	var mr *miniredis.Miniredis
	if addr == "" {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start in-process redis: %w", err)
		}
		addr = mr.Addr()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return rdb, func() {
		_ = rdb.Close()
		if mr != nil {
			mr.Close()
		}
	}, nil
}

// newAuthority builds a single authority whose fallback tier uses
// redisAddr, or an in-process Redis when redisAddr is empty.
func newAuthority(cfg goGuard.Config, logger *zap.Logger, redisAddr string) (*goGuard.Authority, func(), error) {
	rdb, closeRedis, err := newRedis(redisAddr)
	if err != nil {
		return nil, nil, err
	}

	a, err := goGuard.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithLogger(logger).
		WithAuditSink(goGuard.NewZapSink(logger.Named("audit"))).
		Build()
	if err != nil {
		closeRedis()
		return nil, nil, err
	}

	return a, func() {
		a.Close()
		closeRedis()
	}, nil
}

// newApp routes /metrics ahead of the browser routes, so scrapes never
// create an authority.
func newApp(reg *sessionRegistry) (http.Handler, error) {
	metrics, err := promexport.Handler(reg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Handle("/metrics", metrics).Methods(http.MethodGet)

	app := r.NewRoute().Subrouter()
	app.Use(reg.Middleware)

	app.Handle("/", page(homePage)).Methods(http.MethodGet)
	app.Handle("/signin", page(signInPage(nil))).Methods(http.MethodGet)
	app.HandleFunc("/signin", signInHandler).Methods(http.MethodPost)
	app.HandleFunc("/logout", logoutHandler).Methods(http.MethodPost)
	app.Handle("/unauthorized", page(unauthorizedPage)).Methods(http.MethodGet)
	app.HandleFunc("/session", sessionHandler).Methods(http.MethodGet)

	protected := app.PathPrefix("/protected").Subrouter()
	protected.Handle("/dashboard", page(dashboardPage)).Methods(http.MethodGet)
	protected.Handle("/admin", page(adminPage("Administration",
		`<ul><li><a href="/protected/admin/users">Users</a></li><li><a href="/protected/admin/settings">Settings</a></li></ul>`))).Methods(http.MethodGet)
	protected.Handle("/admin/users", page(adminPage("Users", `<p>User management.</p>`))).Methods(http.MethodGet)
	protected.Handle("/admin/settings", page(adminPage("Settings", `<p>Application settings.</p>`))).Methods(http.MethodGet)

	return r, nil
}

// signInHandler posts the form credentials to the backend. On success the
// browser receives the token cookie and the landing redirect chosen by Login.
func signInHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	a := goGuard.FromContext(r.Context())

	var target string
	ctx := goGuard.ContextWithNavigator(r.Context(), goGuard.NavigatorFunc(func(_ context.Context, path string) {
		target = path
	}))

	res := client.NewAuthAPI(a).SignIn(ctx, r.PostFormValue("phone"), r.PostFormValue("password"))
	if !res.Success {
		w.WriteHeader(http.StatusUnauthorized)
		_ = signInPage(res.Errors).Render(r.Context(), w)
		return
	}

	cfg := a.Config()
	if raw, ok := sessionToken(a); ok {
		if claims, err := a.Codec().Decode(raw); err == nil {
			http.SetCookie(w, session.TokenCookie(cfg.Session.CookieName, raw, claims.Expiry(), cfg.SecureCookies()))
		}
	}
	if target == "" {
		target = cfg.Routes.DefaultLanding
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	a := goGuard.FromContext(r.Context())
	cfg := a.Config()
	http.SetCookie(w, session.ExpiredTokenCookie(cfg.Session.CookieName, cfg.SecureCookies()))
	if err := a.Logout(r.Context()); err != nil {
		a.Logger().Warn("logout incomplete", zap.Error(err))
	}
}

func sessionHandler(w http.ResponseWriter, r *http.Request) {
	s := goGuard.FromContext(r.Context()).Session()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  s.Status.String(),
		"role":    s.Role,
		"user_id": s.UserID,
	})
}

// sessionToken reads the token the authority keeps in its cookie jar.
func sessionToken(a *goGuard.Authority) (string, bool) {
	cfg := a.Config()
	jar := a.HTTPClient().Jar
	if jar == nil {
		return "", false
	}
	u, err := url.Parse(cfg.Session.BaseURL)
	if err != nil {
		return "", false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == cfg.Session.CookieName {
			return c.Value, true
		}
	}
	return "", false
}
