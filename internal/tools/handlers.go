package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rogeecn/fbads-mcp/internal/credential"
	"github.com/rogeecn/fbads-mcp/internal/graph"
	"github.com/rogeecn/fbads-mcp/internal/oauth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type insightsFunc func(ctx context.Context, objectID string, q graph.InsightsQuery) (json.RawMessage, error)

func handleListAdAccounts(svc AdsService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := svc.ListAdAccounts(ctx)
		return jsonResult("list_ad_accounts", body, err)
	}
}

func handleAdAccountDetails(svc AdsService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ActID  string   `json:"act_id"`
			Fields []string `json:"fields"`
		}
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if strings.TrimSpace(args.ActID) == "" {
			return mcp.NewToolResultError("Error: act_id parameter is required"), nil
		}

		body, err := svc.AdAccountDetails(ctx, args.ActID, args.Fields)
		return jsonResult("get_details_of_ad_account", body, err)
	}
}

func handleInsights(toolName, idName string, fetch insightsFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		objectID, err := request.RequireString(idName)
		if err != nil || strings.TrimSpace(objectID) == "" {
			return mcp.NewToolResultError(fmt.Sprintf("Error: %s parameter is required", idName)), nil
		}

		var args insightsArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q, err := args.query()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := fetch(ctx, objectID, q)
		return jsonResult(toolName, body, err)
	}
}

func handleFetchPaginationURL(svc AdsService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pageURL, err := request.RequireString("url")
		if err != nil || strings.TrimSpace(pageURL) == "" {
			return mcp.NewToolResultError("Error: url parameter is required"), nil
		}

		body, err := svc.FetchPage(ctx, pageURL)
		return jsonResult("fetch_pagination_url", body, err)
	}
}

func handleRefreshToken(refresher TokenRefresher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scope := request.GetString("scope", oauth.DefaultScope)

		result, err := refresher.Refresh(ctx, scope)
		if err != nil {
			log.Error().Err(err).Msg("refresh_facebook_token failed")
			return mcp.NewToolResultError(fmt.Sprintf("Refresh error: %v", err)), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode refresh result: %w", err)
		}
		if result.Status != oauth.StatusSuccess {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(string(payload))},
				IsError: true,
			}, nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// jsonResult turns a Graph body into text content and failures into
// error results the agent can read.
func jsonResult(toolName string, body json.RawMessage, err error) (*mcp.CallToolResult, error) {
	if err == nil {
		return mcp.NewToolResultText(string(body)), nil
	}

	unavailable := errors.Is(err, credential.ErrUnavailable)

	level := zerolog.WarnLevel
	if unavailable {
		level = zerolog.ErrorLevel
	}
	event := log.WithLevel(level)
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		event = event.Int("status", apiErr.StatusCode)
	}
	event.Err(err).Str("tool", toolName).Msg("tool call failed")

	if unavailable {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v. Run refresh_facebook_token to obtain a token.", err)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
}
