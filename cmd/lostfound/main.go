package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/erazemk/lostfound/internal/admin"
	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/web"
)

// purgeInterval is how often expired sessions and revocations are removed.
const purgeInterval = 10 * time.Minute

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// loadConfig resolves the configuration: defaults, then the YAML file, then
// the environment (seeded from .env), then the flags that were set.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var envPath string
	fs.StringVar(&envPath, "env", ".env", "")

	var addr, dbPath, backendURL, logPath string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")
	fs.StringVar(&backendURL, "backend", "", "")
	fs.StringVar(&backendURL, "b", "", "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound [flags]

Flags:
  -c, -config <path>      YAML configuration file (default: none)
      -env <path>         dotenv file with LOSTFOUND_* variables (default: .env)
  -a, -addr <host:port>   listen address (default: :8080)
  -d, -db <path>          SQLite database path (default: lostfound.sqlite3)
  -b, -backend <url>      backend API base URL (default: http://localhost:8000/api)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr", "a":
			cfg.Addr = addr
		case "db", "d":
			cfg.DBPath = dbPath
		case "backend", "b":
			cfg.Backend.URL = backendURL
		case "log", "l":
			cfg.LogPath = logPath
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	// Both secrets are generated on first run and kept in the database.
	ctx := context.Background()
	cookieSecret, err := store.GetCookieSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get cookie secret", "error", err)
		os.Exit(1)
	}
	tokenSecret, err := store.GetTokenSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get token secret", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := api.NewMetrics(registry)

	backend := client.New(cfg.Backend.URL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
		client.WithMetrics(client.NewMetrics(registry)),
	)

	sessions, err := session.NewManager(database, backend, tokenSecret, session.Config{
		CookieSecret: cookieSecret,
		Lifetime:     cfg.Session.Lifetime,
		SecureCookie: cfg.Session.SecureCookie,
	})
	if err != nil {
		slog.Error("failed to set up sessions", "error", err)
		os.Exit(1)
	}
	session.RegisterMetrics(registry, sessions)

	portal, err := web.NewRouter(web.Options{
		DB:           database,
		Backend:      backend,
		Sessions:     sessions,
		Gatherer:     registry,
		PollInterval: cfg.Chat.PollInterval,
	})
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(httpMetrics.Middleware(portal)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go purgeSessions(janitorCtx, sessions, portal.Consoles, cfg.Session.Lifetime)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.Addr, "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("server started", "addr", ln.Addr().String(), "backend", cfg.Backend.URL)
	if err := serve(server, ln, portal, quit, 5*time.Second); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	stopJanitor()
	slog.Info("server stopped, closing database")
}

// serve runs server on ln until a signal arrives on quit. It returns only
// after in-flight requests have drained and the background work they
// started (tracked by bg) has finished.
func serve(server *http.Server, ln net.Listener, bg interface{ Wait() }, quit <-chan os.Signal, timeout time.Duration) error {
	// drained is closed once Shutdown has returned, so no handler is still
	// running and no new background work can start.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		sig, ok := <-quit
		if ok {
			slog.Info("shutdown signal received", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-drained
	// Let background read receipts finish before the database closes.
	bg.Wait()
	return nil
}

// purgeSessions removes expired sessions and revocations until ctx is done.
// Admin consoles idle for longer than a session can live are dropped with
// them.
func purgeSessions(ctx context.Context, sessions *session.Manager, consoles *admin.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Purge(ctx)
			if err != nil {
				slog.Error("failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
			if n := consoles.Evict(maxIdle); n > 0 {
				slog.Info("evicted idle admin consoles", "count", n)
			}
		}
	}
}
