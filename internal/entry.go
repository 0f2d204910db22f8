// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/orgblog/internal/api"
	"github.com/starford/orgblog/internal/build"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/entryservice"
	"github.com/starford/orgblog/internal/mcpserver"
	"github.com/starford/orgblog/internal/parser"
	"github.com/starford/orgblog/internal/sse"
	"github.com/starford/orgblog/internal/storage"
	"github.com/starford/orgblog/internal/userlog"
)

// runtime holds the wired components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	parser *parser.Parser
	db     *catalog.DB
	coord  *build.Coordinator
	paths  build.Paths
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{command: CommandBuild}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	rt, err := app.setup()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	switch app.command {
	case CommandBuild:
		_, err := rt.coord.Run(ctx, rt.paths)
		return err
	case CommandWatch:
		return rt.watch(ctx, nil)
	case CommandServe:
		return rt.serve(ctx)
	case CommandMCP:
		svc := entryservice.NewService(rt.store, rt.db, rt.cfg.Blog.NewMetadata)
		rt.logger.Info("MCP server starting on stdio")
		return mcpserver.New(svc, rt.parser).ServeStdio()
	default:
		return fmt.Errorf("unknown command %q", app.command)
	}
}

func (app *application) setup() (*runtime, error) {
	cfg := app.config

	root, err := filepath.Abs(cfg.Blog.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve blog root: %w", err)
	}
	cfg.Blog.Root = root
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blog root: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// Structured JSON logger; WARN and above also land in the user log.
	// stdout is the MCP transport, so the MCP command logs to stderr.
	var out io.Writer = os.Stdout
	if app.command == CommandMCP {
		out = os.Stderr
	}
	console := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	})
	logger := slog.New(userlog.NewHandler(console, userlog.New(store, cfg.Blog.UserLog)))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("command", string(app.command)),
		slog.String("blog_root", root),
		slog.Any("inputs", cfg.Blog.Inputs),
		slog.String("catalog_path", cfg.Blog.CatalogPath()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	p, err := parser.New(cfg.Markup.ParserConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("init parser: %w", err)
	}

	// Initialize SQLite catalog.
	dbPath := cfg.Blog.CatalogPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := catalog.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	coord := build.NewCoordinator(store, p, logger,
		build.WithCatalog(db),
		build.WithRenderer(build.NewManifestRenderer(store, cfg.Blog.Manifest)),
		build.WithDiff(app.showDiff),
	)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		parser: p,
		db:     db,
		coord:  coord,
		paths: build.Paths{
			Inputs:   cfg.Blog.Inputs,
			Previous: cfg.Blog.PreviousMetadata,
			New:      cfg.Blog.NewMetadata,
			Rotate:   cfg.Blog.Rotate,
		},
	}, nil
}

// watch builds once, then rebuilds on input changes until a signal arrives
// or ctx is done. cb sees every rebuild, including the first one.
func (rt *runtime) watch(ctx context.Context, cb build.RebuildCallback) error {
	if !rt.paths.Rotate {
		rt.logger.Warn("Watching without snapshot rotation, every rebuild compares against the same previous metadata")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	report, err := rt.coord.Run(ctx, rt.paths)
	if err != nil {
		rt.logger.Warn("Initial build failed, waiting for changes", slog.String("error", err.Error()))
	}
	if cb != nil {
		cb(report, err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.coord.Watch(gCtx, rt.store.Root(), rt.paths, rt.cfg.Blog.WatchDebounce, cb)
	})

	g.Go(func() error {
		waitForSignal(gCtx, rt.logger)
		cancel()
		return nil
	})

	return g.Wait()
}

// serve runs the watcher and the HTTP inspection API side by side.
func (rt *runtime) serve(ctx context.Context) error {
	cfg := rt.cfg

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	svc := entryservice.NewService(rt.store, rt.db, cfg.Blog.NewMetadata)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Watch inputs and announce every rebuild.
	g.Go(func() error {
		return rt.watch(gCtx, func(report *build.Report, err error) {
			broker.PublishBuild(summarize(report, err))
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		rt.logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		waitForSignal(gCtx, rt.logger)
		cancel()

		rt.logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		rt.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	rt.logger.Info("Server stopped successfully")
	return nil
}

// waitForSignal blocks until SIGINT, SIGTERM or ctx is done.
func waitForSignal(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}

// summarize turns a rebuild outcome into the event clients receive.
func summarize(report *build.Report, err error) sse.BuildSummary {
	if err != nil {
		return sse.BuildSummary{Error: err.Error()}
	}
	sum := sse.BuildSummary{
		Generated: report.Changes.ToGenerate,
		Feed:      report.Changes.ToFeed,
		Bumped:    report.Changes.ToIncrementVersion,
		Anomalies: len(report.Changes.Anomalies),
	}
	if report.Catalog != nil {
		sum.Removed = report.Catalog.Removed
	}
	return sum
}
