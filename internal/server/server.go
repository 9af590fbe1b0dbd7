// Package server exposes a single in-memory editor session over HTTP.
//
// Every request is served against the same editor, serialized by a mutex.
// There is no persistence: the scene lives as long as the process.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/blockfit/pkg/catalog"
	"github.com/matzehuels/blockfit/pkg/editor"
)

// SessionHeader carries the session id on every response.
const SessionHeader = "X-Session-ID"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Catalog resolves presets for POST /api/v1/blocks. Nil means the
	// built-in catalog.
	Catalog *catalog.Catalog

	// Editor options, such as the canvas size.
	Editor []editor.Option

	// Logger receives server lifecycle messages. Nil means log.Default().
	Logger *log.Logger
}

// Server serves one editor session.
type Server struct {
	mu      sync.Mutex
	editor  *editor.Editor
	catalog *catalog.Catalog

	session string
	logger  *log.Logger
	router  chi.Router
}

// New creates a server with a fresh editor and a new session id.
func New(opts Options) *Server {
	s := &Server{
		editor:  editor.New(opts.Editor...),
		catalog: opts.Catalog,
		session: uuid.NewString(),
		logger:  opts.Logger,
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.routes()
	return s
}

// SessionID returns the id sent in the X-Session-ID header.
func (s *Server) SessionID() string { return s.session }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.sessionHeader)
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scene", s.handleScene)
		r.Get("/catalog", s.handleCatalog)

		r.Post("/blocks", s.handleAdd)
		r.Delete("/blocks", s.handleClear)
		r.Post("/blocks/{index}/select", s.handleSelect)

		r.Delete("/selection", s.handleDelete)
		r.Post("/selection/duplicate", s.handleDuplicate)
		r.Put("/selection/label", s.handleLabel)

		r.Post("/pointer", s.handlePointer)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)

		r.Put("/background", s.handleBackground)

		r.Post("/calibration", s.handleCalibrationStart)
		r.Post("/calibration/length", s.handleCalibrationLength)
		r.Delete("/calibration", s.handleCalibrationCancel)

		r.Get("/export.png", s.handleExportPNG)
		r.Get("/export.svg", s.handleExportSVG)
		r.Get("/export.json", s.handleExportJSON)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving editor session", "addr", addr, "session", s.session)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
