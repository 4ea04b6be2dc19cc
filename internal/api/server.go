// Package api exposes the tree editing operations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/temirov/treetext/internal/editor"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	listeningMessage     = "serving tree API"
	addressField         = "address"
	serverErrorFormat    = "serve %s: %w"
	shutdownErrorFormat  = "shut down server: %w"
	maxRequestBodyBytes  = 4 << 20
	healthResponseStatus = "ok"
)

// Capability describes one endpoint of the API.
type Capability struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var capabilities = []Capability{
	{Name: "format", Method: http.MethodPost, Path: "/api/format", Description: "re-render every tree block of a document"},
	{Name: "indent", Method: http.MethodPost, Path: "/api/indent", Description: "move the nodes under a selection one level deeper"},
	{Name: "outdent", Method: http.MethodPost, Path: "/api/outdent", Description: "move the nodes under a selection one level up"},
	{Name: "insert", Method: http.MethodPost, Path: "/api/insert", Description: "add an empty sibling next to the node under a cursor"},
	{Name: "structure", Method: http.MethodPost, Path: "/api/structure", Description: "folding ranges and decoration spans of a document"},
}

// Capabilities lists the endpoints served under /api.
func Capabilities() []Capability {
	return append([]Capability(nil), capabilities...)
}

// Server is the HTTP API server for tree documents.
type Server struct {
	router   chi.Router
	defaults editor.Options
	log      *zap.Logger
}

// NewServer creates the router. defaults supply the style and indent behaviour a request leaves unset.
func NewServer(defaults editor.Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{defaults: defaults, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/capabilities", s.handleCapabilities)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(middleware.RequestSize(maxRequestBodyBytes))

		r.Post("/format", s.handleFormat)
		r.Post("/indent", s.handleShift(1))
		r.Post("/outdent", s.handleShift(-1))
		r.Post("/insert", s.handleInsert)
		r.Post("/structure", s.handleStructure)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": healthResponseStatus})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Capabilities())
}

// ListenAndServe serves the API on address until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	serveErrors := make(chan error, 1)
	go func() {
		s.log.Info(listeningMessage, zap.String(addressField, address))
		serveErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf(serverErrorFormat, address, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf(shutdownErrorFormat, err)
		}
		return nil
	}
}
