// Package web serves the brd-tui JSON API with an SSE change feed.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brd-tui/internal/app"
)

// Server is the brd-tui HTTP server.
type Server struct {
	a   *app.App
	srv *http.Server
	hub *sseHub
	mux *http.ServeMux
	url string
}

// New creates a Server bound to a and subscribes it to project changes.
func New(a *app.App) *Server {
	s := &Server{a: a, hub: newSSEHub(), mux: http.NewServeMux()}
	s.registerRoutes(s.mux)
	a.Subscribe(func(c app.Change) {
		data, err := json.Marshal(c)
		if err != nil {
			return
		}
		s.hub.emit(c.Type, string(data))
	})
	go s.hub.run()
	return s
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler { return s.mux }

// URL returns the base URL (e.g. "http://127.0.0.1:8765") once started.
func (s *Server) URL() string { return s.url }

// Start listens on addr and serves in a background goroutine. It returns
// the base URL.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("web: listen %s: %w", addr, err)
	}
	s.url = "http://" + ln.Addr().String()

	s.srv = &http.Server{
		Handler:           s.mux,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: SSE connections stay open.
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.a.Logs().System.Error("web: serve failed", "err", err)
		}
	}()
	s.a.Logs().System.Info("web: listening", "url", s.url)
	return s.url, nil
}

// Stop gracefully shuts down the server and the event hub.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.stop()
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: stop: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.a.Registry(), promhttp.HandlerOpts{}))

	// Projects
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("POST /api/projects/import", s.handleImportProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("PUT /api/projects/{id}/overview", s.handleSetOverview)
	mux.HandleFunc("PUT /api/projects/{id}/multi-agent", s.handleSetMultiAgent)
	mux.HandleFunc("DELETE /api/projects/{id}/multi-agent", s.handleClearMultiAgent)
	mux.HandleFunc("GET /api/projects/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/projects/{id}/references", s.handleReferences)
	mux.HandleFunc("GET /api/projects/{id}/events", s.handleProjectEvents)

	// Records
	mux.HandleFunc("POST /api/projects/{id}/records/{kind}", s.handleAddRecord)
	mux.HandleFunc("PUT /api/projects/{id}/records/{kind}/{index}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/projects/{id}/records/{kind}/{index}", s.handleRemoveRecord)

	// Schema & gateway
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("POST /api/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/gateway", s.handleGateway)
	mux.HandleFunc("GET /api/governance/default", s.handleDefaultGovernance)
}
