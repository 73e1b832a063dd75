// Package server implements the deliverynote HTTP API.
//
// The server edits one delivery note held by a [shell.Shell]. Every client
// sees the same document; edits go through the same reducer as the terminal
// editor, and exports share its busy flag, so a second export request while
// one runs is answered with 409 Conflict.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deliverynote/pkg/pipeline"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

const shutdownTimeout = 5 * time.Second

// Server serves the HTTP API.
type Server struct {
	shell  *shell.Shell
	runner *pipeline.Runner
	logger *log.Logger
}

// New returns a server editing the document owned by sh. Previews and
// spreadsheets are rendered through runner.
func New(sh *shell.Shell, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{shell: sh, runner: runner, logger: logger}
}

// Handler returns the router with all routes and middlewares applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api/note", func(r chi.Router) {
		r.Get("/", s.getNote)
		r.Put("/", s.putNote)
		r.Patch("/", s.patchNote)

		r.Post("/items", s.addItem)
		r.Patch("/items/{id}", s.updateItem)
		r.Delete("/items/{id}", s.removeItem)

		r.Get("/totals", s.totals)
		r.Get("/layout", s.layout)
		r.Get("/preview.png", s.preview)
		r.Get("/export.xlsx", s.spreadsheet)
		r.Post("/export", s.export)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request with charmbracelet/log.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
