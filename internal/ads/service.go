// Package ads maps each advertising operation onto one Graph API read:
// resolve the token, apply per-operation defaults, encode, GET.
package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rogeecn/fbads-mcp/internal/credential"
	"github.com/rogeecn/fbads-mcp/internal/graph"
	"github.com/rogeecn/fbads-mcp/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	LevelAccount  = "account"
	LevelCampaign = "campaign"
	LevelAdSet    = "adset"
	LevelAd       = "ad"
)

// DefaultAdAccountFields is used when AdAccountDetails gets no fields.
var DefaultAdAccountFields = []string{
	"name", "business_name", "age", "account_status", "balance",
	"amount_spent", "attribution_spec", "account_id", "business",
	"business_city", "brand_safety_content_filter_levels", "currency",
	"created_time", "id",
}

type graphGetter interface {
	Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
	GetURL(ctx context.Context, rawURL string) (json.RawMessage, error)
}

type Service struct {
	credentials credential.Provider
	graph       graphGetter
}

func NewService(credentials credential.Provider, client *graph.Client) *Service {
	return &Service{credentials: credentials, graph: client}
}

// ListAdAccounts lists the ad accounts of the token's user.
func (s *Service) ListAdAccounts(ctx context.Context) (json.RawMessage, error) {
	token, err := s.credentials.Get()
	if err != nil {
		return nil, fmt.Errorf("list ad accounts: %w", err)
	}

	body, err := s.graph.Get(ctx, "me", graph.FieldsParams(token, []string{"adaccounts{name}"}))
	if err != nil {
		return nil, fmt.Errorf("list ad accounts: %w", err)
	}
	return body, nil
}

// AdAccountDetails reads fields of one ad account (act_...).
func (s *Service) AdAccountDetails(ctx context.Context, actID string, fields []string) (json.RawMessage, error) {
	actID = strings.TrimSpace(actID)
	if actID == "" {
		return nil, fmt.Errorf("ad account details: act_id is required")
	}
	if len(fields) == 0 {
		fields = DefaultAdAccountFields
	}

	token, err := s.credentials.Get()
	if err != nil {
		return nil, fmt.Errorf("ad account details: %w", err)
	}

	body, err := s.graph.Get(ctx, url.PathEscape(actID), graph.FieldsParams(token, fields))
	if err != nil {
		return nil, fmt.Errorf("ad account details: %w", err)
	}
	return body, nil
}

func (s *Service) AccountInsights(ctx context.Context, actID string, q graph.InsightsQuery) (json.RawMessage, error) {
	return s.insights(ctx, "act_id", actID, LevelAccount, q)
}

func (s *Service) CampaignInsights(ctx context.Context, campaignID string, q graph.InsightsQuery) (json.RawMessage, error) {
	return s.insights(ctx, "campaign_id", campaignID, LevelCampaign, q)
}

func (s *Service) AdSetInsights(ctx context.Context, adSetID string, q graph.InsightsQuery) (json.RawMessage, error) {
	return s.insights(ctx, "adset_id", adSetID, LevelAdSet, q)
}

func (s *Service) AdInsights(ctx context.Context, adID string, q graph.InsightsQuery) (json.RawMessage, error) {
	return s.insights(ctx, "ad_id", adID, LevelAd, q)
}

// FetchPage replays a paging.next/previous URL exactly as returned.
func (s *Service) FetchPage(ctx context.Context, pageURL string) (json.RawMessage, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("fetch page: url is required")
	}

	body, err := s.graph.GetURL(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	logPage("fetch page", body)
	return body, nil
}

func (s *Service) insights(ctx context.Context, idName, objectID, defaultLevel string, q graph.InsightsQuery) (json.RawMessage, error) {
	op := defaultLevel + " insights"

	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		return nil, fmt.Errorf("%s: %s is required", op, idName)
	}
	if strings.TrimSpace(q.Level) == "" {
		q.Level = defaultLevel
	}

	token, err := s.credentials.Get()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	params, err := graph.BuildInsightsParams(token, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body, err := s.graph.Get(ctx, url.PathEscape(objectID)+"/insights", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logPage(op, body)
	return body, nil
}

// logPage reports whether the body was decoded for a debug line.
func logPage(op string, body json.RawMessage) bool {
	event := log.Debug()
	if !event.Enabled() {
		return false
	}

	var page types.Page
	if err := json.Unmarshal(body, &page); err != nil {
		event.Discard()
		return false
	}

	hasNext := page.Paging != nil && page.Paging.Next != ""
	event.
		Str("op", op).
		Int("rows", len(page.Data)).
		Bool("has_next", hasNext).
		Msg("ads: page received")
	return true
}
