// Package server is the composition root: it opens the store, installs the
// schema constraints, wires repositories → services → handlers and serves
// them over HTTP until a shutdown signal arrives.
//
// STARTUP ORDER:
//  1. open the store (sqlite.New)
//  2. install every collection's constraints and indexes (DB.Migrate);
//     any failure here aborts startup
//  3. build the router
//  4. start listening
//
// Step 2 finishing before step 4 is what guarantees no request is served
// against a table without its constraints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/whiskerbook/internal/handler"
	"github.com/sakif/whiskerbook/internal/middleware"
	sqliteRepo "github.com/sakif/whiskerbook/internal/repository/sqlite"
	"github.com/sakif/whiskerbook/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port               int
	DBPath             string
	ServiceName        string
	StaticDir          string // served for unmatched GETs when it exists; "" disables
	CORSAllowedOrigins []string
}

// Server owns the HTTP router and the database connection.
type Server struct {
	router http.Handler
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the store, installs its constraints and builds the router.
//
// The sqlite repository package is imported as sqliteRepo so it does not
// read as the driver.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." && !sqliteRepo.IsMemory(cfg.DBPath) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	results, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("installing schema constraints: %w", err)
	}
	for _, r := range results {
		if r.Created {
			logger.Info("collection created with schema constraints", slog.String("collection", r.Collection))
		} else {
			logger.Info("schema constraints applied", slog.String("collection", r.Collection))
		}
	}

	return &Server{
		router: NewRouter(db, cfg, logger, prometheus.NewRegistry()),
		config: cfg,
		logger: logger,
		db:     db,
	}, nil
}

// NewRouter builds the full HTTP surface on top of an already migrated db.
// Collectors are registered on reg, which also backs GET /metrics.
//
// ROUTES:
//
//	GET    /health
//	GET    /metrics
//	GET    /cats                       POST /cats
//	GET    /cats/{id}     PATCH /cats/{id}     DELETE /cats/{id}
//	GET    /meows?catId=               POST /meows
//	GET    /meows/search/by-cat-name?name=
//	GET    /meows/{id}    PATCH /meows/{id}    DELETE /meows/{id}
//	GET    /purrs?meowId=              POST /purrs
//	GET    /purrs/by-meow/{meowId}
//	GET    /purrs/{id}    PATCH /purrs/{id}    DELETE /purrs/{id}
//	POST   /debug/invalid-meow
func NewRouter(db *sqliteRepo.DB, cfg Config, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()

	// Middleware runs in the order added.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Handler)
	r.Use(middleware.Recoverer(logger, http.HandlerFunc(handler.InternalError)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	cats := service.NewCatService(db, logger)
	meows := service.NewMeowService(db, db, logger)
	purrs := service.NewPurrService(db, db, logger)

	r.Get("/health", handler.HandleHealth(cfg.ServiceName))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/cats", handler.NewCatHandler(cats, logger).Routes)
	r.Route("/meows", handler.NewMeowHandler(meows, logger).Routes)
	r.Route("/purrs", handler.NewPurrHandler(purrs, logger).Routes)

	r.Post("/debug/invalid-meow", handler.NewDebugHandler(db, logger).HandleInvalidMeow)

	r.NotFound(staticOrNotFound(cfg.StaticDir))
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// staticOrNotFound serves files from dir for GET and HEAD requests that match
// no API route, and answers everything else with the JSON 404 body.
func staticOrNotFound(dir string) http.HandlerFunc {
	if dir == "" {
		return handler.NotFound
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return handler.NotFound
	}

	files := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			handler.NotFound(w, r)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || (info.IsDir() && !hasIndex(name)) {
			handler.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

func hasIndex(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "index.html"))
	return err == nil
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("service", s.config.ServiceName),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
