// Package tools exposes the advertising operations as Model Context
// Protocol tools.
package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rogeecn/fbads-mcp/internal/graph"
	"github.com/rogeecn/fbads-mcp/internal/oauth"
)

const ServerName = "fbads-mcp"

type AdsService interface {
	ListAdAccounts(ctx context.Context) (json.RawMessage, error)
	AdAccountDetails(ctx context.Context, actID string, fields []string) (json.RawMessage, error)
	AccountInsights(ctx context.Context, actID string, q graph.InsightsQuery) (json.RawMessage, error)
	CampaignInsights(ctx context.Context, campaignID string, q graph.InsightsQuery) (json.RawMessage, error)
	AdSetInsights(ctx context.Context, adSetID string, q graph.InsightsQuery) (json.RawMessage, error)
	AdInsights(ctx context.Context, adID string, q graph.InsightsQuery) (json.RawMessage, error)
	FetchPage(ctx context.Context, pageURL string) (json.RawMessage, error)
}

type TokenRefresher interface {
	Refresh(ctx context.Context, scope string) (*oauth.Result, error)
}

// Definitions pairs every tool with its handler.
func Definitions(svc AdsService, refresher TokenRefresher) []server.ServerTool {
	return []server.ServerTool{
		{Tool: listAdAccountsTool(), Handler: handleListAdAccounts(svc)},
		{Tool: adAccountDetailsTool(), Handler: handleAdAccountDetails(svc)},
		{
			Tool: insightsTool("get_adaccount_insights",
				"Retrieves performance insights (impressions, reach, cost, conversions, ...) for a Facebook ad account",
				"act_id", "Ad account ID prefixed with 'act_', e.g. act_1234567890", "account"),
			Handler: handleInsights("get_adaccount_insights", "act_id", svc.AccountInsights),
		},
		{
			Tool: insightsTool("get_campaign_insights",
				"Retrieves performance insights for a specific Facebook ad campaign",
				"campaign_id", "ID of the ad campaign, e.g. 23843xxxxx", "campaign"),
			Handler: handleInsights("get_campaign_insights", "campaign_id", svc.CampaignInsights),
		},
		{
			Tool: insightsTool("get_adset_insights",
				"Retrieves performance insights for a specific Facebook ad set",
				"adset_id", "ID of the ad set, e.g. 6123456789012", "adset"),
			Handler: handleInsights("get_adset_insights", "adset_id", svc.AdSetInsights),
		},
		{
			Tool: insightsTool("get_ad_insights",
				"Retrieves detailed performance insights for a specific Facebook ad",
				"ad_id", "ID of the ad, e.g. 6123456789012", "ad"),
			Handler: handleInsights("get_ad_insights", "ad_id", svc.AdInsights),
		},
		{Tool: fetchPaginationURLTool(), Handler: handleFetchPaginationURL(svc)},
		{Tool: refreshTokenTool(), Handler: handleRefreshToken(refresher)},
	}
}

// NewServer builds the MCP server with every tool registered.
func NewServer(version string, svc AdsService, refresher TokenRefresher) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTools(Definitions(svc, refresher)...)
	return s
}
