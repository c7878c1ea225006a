package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rogeecn/fbads-mcp/internal/config"
)

type fakeServeRunner struct {
	startFn func() error
	stopFn  func(ctx context.Context) error
}

func (f *fakeServeRunner) Start() error {
	if f.startFn != nil {
		return f.startFn()
	}
	return nil
}

func (f *fakeServeRunner) Stop(ctx context.Context) error {
	if f.stopFn != nil {
		return f.stopFn(ctx)
	}
	return nil
}

func setupServeTest(t *testing.T) {
	t.Helper()

	origNewServeServer := newServeServer
	origServeStdio := serveStdio
	origSignalNotifyContext := signalNotifyContext
	origTransport, origHost, origPort := serveTransport, serveHost, servePort
	t.Cleanup(func() {
		newServeServer = origNewServeServer
		serveStdio = origServeStdio
		signalNotifyContext = origSignalNotifyContext
		serveTransport, serveHost, servePort = origTransport, origHost, origPort
	})

	serveTransport, serveHost, servePort = "", "", 0
	t.Setenv("FBADS_TOKEN_FILE", filepath.Join(t.TempDir(), "fb_token"))
}

func cancelledSignalContext(parent context.Context, _ ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	cancel()
	return ctx, func() {}
}

func TestRunServeStdioByDefault(t *testing.T) {
	setupServeTest(t)

	var served *mcpserver.MCPServer
	serveStdio = func(s *mcpserver.MCPServer) error {
		served = s
		return nil
	}
	newServeServer = func(*config.Config, http.Handler, *app) serveRunner {
		t.Fatal("http server should not be built for stdio")
		return nil
	}

	if err := runServe(nil, nil); err != nil {
		t.Fatalf("runServe error: %v", err)
	}
	if served == nil {
		t.Fatal("serveStdio was not called")
	}
}

func TestRunServeStdioError(t *testing.T) {
	setupServeTest(t)

	serveStdio = func(*mcpserver.MCPServer) error {
		return fmt.Errorf("stdin closed")
	}

	err := runServe(nil, nil)
	if err == nil {
		t.Fatal("expected stdio error, got nil")
	}
}

func TestRunServeHTTPOverrides(t *testing.T) {
	setupServeTest(t)
	t.Setenv("FBADS_TRANSPORT", "stdio")
	t.Setenv("FBADS_HOST", "0.0.0.0")
	t.Setenv("FBADS_PORT", "28080")

	serveTransport = "http"
	serveHost = "127.0.0.1"
	servePort = 19000

	var capturedCfg *config.Config
	var capturedHandler http.Handler
	newServeServer = func(cfg *config.Config, handler http.Handler, _ *app) serveRunner {
		copied := *cfg
		capturedCfg = &copied
		capturedHandler = handler
		return &fakeServeRunner{
			startFn: func() error { return nil },
		}
	}

	if err := runServe(nil, nil); err != nil {
		t.Fatalf("runServe error: %v", err)
	}
	if capturedCfg == nil {
		t.Fatal("newServeServer was not called")
	}
	if capturedCfg.Transport != "http" || capturedCfg.Host != "127.0.0.1" || capturedCfg.Port != 19000 {
		t.Fatalf("unexpected cfg overrides: %+v", *capturedCfg)
	}
	if capturedHandler == nil {
		t.Fatal("mcp handler should be passed to the http server")
	}
}

func TestRunServeRejectsUnknownTransport(t *testing.T) {
	setupServeTest(t)
	serveTransport = "websocket"

	if err := runServe(nil, nil); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestRunServeShutdownPath(t *testing.T) {
	setupServeTest(t)
	serveTransport = "http"

	stopCh := make(chan struct{})
	newServeServer = func(*config.Config, http.Handler, *app) serveRunner {
		return &fakeServeRunner{
			startFn: func() error {
				<-stopCh
				return nil
			},
			stopFn: func(ctx context.Context) error {
				close(stopCh)
				return nil
			},
		}
	}
	signalNotifyContext = cancelledSignalContext

	if err := runServe(nil, nil); err != nil {
		t.Fatalf("runServe shutdown path error: %v", err)
	}
}

func TestRunServeShutdownError(t *testing.T) {
	setupServeTest(t)
	serveTransport = "http"

	stopErr := fmt.Errorf("stop failed")
	newServeServer = func(*config.Config, http.Handler, *app) serveRunner {
		return &fakeServeRunner{
			startFn: func() error {
				time.Sleep(20 * time.Millisecond)
				return nil
			},
			stopFn: func(ctx context.Context) error {
				return stopErr
			},
		}
	}
	signalNotifyContext = cancelledSignalContext

	err := runServe(nil, nil)
	if err == nil {
		t.Fatal("expected shutdown error, got nil")
	}
	if err.Error() != stopErr.Error() {
		t.Fatalf("unexpected error: %v", err)
	}
}
