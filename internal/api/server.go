package api

import (
	"context"
	"net/http"

	"github.com/greywire/proxypool/internal/pool"
	"github.com/greywire/proxypool/internal/reload"
)

// Server wraps the HTTP server and mux for the query API.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer builds a Server bound to addr, exposing the read-only query
// routes over p and the reload trigger gated by flag/passwords. lookup may
// be nil, in which case responses simply omit the country field.
func NewServer(addr string, p *pool.Pool, flag *reload.Flag, passwords *reload.PasswordGate, lookup CountryLookup) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /", HandleBanner())
	mux.Handle("GET /healthz", HandleHealthz())
	mux.Handle("GET /get_status", HandleGetStatus(p))
	mux.Handle("GET /get", HandleGet(p, lookup))
	mux.Handle("GET /get_all", HandleGetAll(p, lookup))
	mux.Handle("GET /reload", HandleReload(flag, passwords))

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		mux: mux,
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}
