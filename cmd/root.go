package cmd

import (
	"fmt"
	"net/http"

	"github.com/rogeecn/fbads-mcp/internal/ads"
	"github.com/rogeecn/fbads-mcp/internal/config"
	"github.com/rogeecn/fbads-mcp/internal/credential"
	"github.com/rogeecn/fbads-mcp/internal/graph"
	"github.com/rogeecn/fbads-mcp/internal/oauth"
	"github.com/rogeecn/fbads-mcp/internal/retry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fbads-mcp",
	Short:         "Facebook Ads MCP 工具服务",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// app holds the collaborators shared by every subcommand.
type app struct {
	config      *config.Config
	credentials *credential.CachedProvider
	graph       *graph.Client
	ads         *ads.Service
	refresher   *oauth.Refresher
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log.Logger = config.InitLogger(cfg.LogLevel)

	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	tokenFile, err := cfg.ResolveTokenFile()
	if err != nil {
		return nil, err
	}
	credentials := credential.NewCachedProvider(credential.NewFileStore(tokenFile))

	graphClient := graph.NewClient(cfg.GraphBaseURL(),
		graph.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		graph.WithRateLimit(cfg.RateLimit),
		graph.WithUserAgent("fbads-mcp/"+version),
	)

	refresher := oauth.NewRefresher(
		oauth.NewClient(cfg.AuthURL, cfg.HTTPTimeout, cfg.AuthInsecureSkipVerify),
		credentials,
		graphClient,
		retry.Config{Interval: cfg.PollInterval, MaxAttempts: cfg.PollAttempts},
	)

	log.Debug().
		Str("token_file", tokenFile).
		Str("graph_url", graphClient.BaseURL()).
		Str("auth_url", cfg.AuthURL).
		Msg("application wired")

	return &app{
		config:      cfg,
		credentials: credentials,
		graph:       graphClient,
		ads:         ads.NewService(credentials, graphClient),
		refresher:   refresher,
	}, nil
}
