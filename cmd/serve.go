package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rogeecn/fbads-mcp/internal/config"
	"github.com/rogeecn/fbads-mcp/internal/server"
	"github.com/rogeecn/fbads-mcp/internal/tools"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"

	shutdownTimeout = 10 * time.Second
)

type serveRunner interface {
	Start() error
	Stop(ctx context.Context) error
}

var (
	serveTransport string
	serveHost      string
	servePort      int
)

var (
	newServeServer = func(cfg *config.Config, handler http.Handler, a *app) serveRunner {
		return server.New(cfg, version, handler, a.credentials)
	}
	serveStdio = func(s *mcpserver.MCPServer) error {
		return mcpserver.ServeStdio(s)
	}
	signalNotifyContext = signal.NotifyContext
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 MCP 工具服务",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "传输方式 stdio|http (默认: 从 FBADS_TRANSPORT 读取)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "监听地址 (默认: 从 FBADS_HOST 读取)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "监听端口 (默认: 从 FBADS_PORT 读取)")
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	cfg := a.config

	if serveTransport != "" {
		cfg.Transport = serveTransport
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort > 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("transport", cfg.Transport).
		Str("log_level", cfg.LogLevel).
		Str("token_file", a.credentials.Path()).
		Msg("starting fbads-mcp")

	mcp := tools.NewServer(version, a.ads, a.refresher)

	switch cfg.Transport {
	case transportHTTP:
		return serveHTTP(newServeServer(cfg, mcpserver.NewStreamableHTTPServer(mcp), a))
	default:
		if err := serveStdio(mcp); err != nil {
			log.Error().Err(err).Msg("stdio transport exited with error")
			return fmt.Errorf("serve stdio: %w", err)
		}
		return nil
	}
}

func serveHTTP(srv serveRunner) error {
	startErrCh := make(chan error, 1)
	go func() {
		startErrCh <- srv.Start()
	}()

	ctx, stop := signalNotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-startErrCh:
		if err != nil {
			log.Error().Err(err).Msg("serve exited with error")
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("serve shutdown failed")
			return err
		}

		select {
		case err := <-startErrCh:
			if err != nil {
				log.Error().Err(err).Msg("serve exited after shutdown with error")
			}
			return err
		case <-time.After(shutdownTimeout):
			log.Error().Msg("serve shutdown timed out")
			return fmt.Errorf("shutdown timeout")
		}
	}
}
