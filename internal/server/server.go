package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rogeecn/fbads-mcp/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 28080

	readHeaderTimeout = 10 * time.Second
)

// tokenSource reports whether a Graph token can be handed out.
type tokenSource interface {
	Available() bool
}

// Server carries the MCP endpoint over streamable HTTP.
type Server struct {
	config      *config.Config
	version     string
	mcp         http.Handler
	credentials tokenSource
	httpServer  *http.Server

	serveFn    func() error
	shutdownFn func(ctx context.Context) error
}

func New(cfg *config.Config, version string, mcpHandler http.Handler, credentials tokenSource) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	s := &Server{
		config:      cfg,
		version:     version,
		mcp:         mcpHandler,
		credentials: credentials,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.serveFn = s.httpServer.ListenAndServe
	s.shutdownFn = s.httpServer.Shutdown

	return s
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	log.Info().
		Str("addr", s.httpServer.Addr).
		Str("endpoint", mcpPath).
		Msg("http server starting")

	if err := s.serveFn(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.shutdownFn(ctx); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("stop server: %w", err)
	}
	return nil
}
