// Package control exposes the engine's local control surface: the
// settings document, the toggle protocol endpoint and a diagnostics
// stream of applied corrections.
package control

import (
	"context"
	"net/http"
	"time"

	"github.com/ynt-app/youtube-no-translation/internal/cache"
	"github.com/ynt-app/youtube-no-translation/internal/orchestrator"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
)

// toggleSink consumes raw toggle-protocol messages.
type toggleSink interface {
	HandleToggle(ctx context.Context, raw []byte)
}

type Server struct {
	store   *settings.Store
	toggles toggleSink
	journal *orchestrator.Journal

	cache *cache.Cache

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithCache exposes response-cache statistics under /api/cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

func NewServer(store *settings.Store, toggles toggleSink, journal *orchestrator.Journal, opts ...Option) *Server {
	s := &Server{
		store:   store,
		toggles: toggles,
		journal: journal,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/toggle", s.handleToggle)
	s.mux.HandleFunc("/api/corrections", s.handleCorrections)
	s.mux.HandleFunc("/api/corrections/stream", s.handleCorrectionStream)
	if s.cache != nil {
		s.mux.HandleFunc("/api/cache", s.handleCacheStats)
	}
}
