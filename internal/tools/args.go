package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rogeecn/fbads-mcp/internal/graph"
	"github.com/rogeecn/fbads-mcp/pkg/types"
)

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("want string or number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// flexInt accepts integral JSON numbers, including 25.0 and "25".
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("want integer, got %s", data)
	}
	*n = flexInt(f)
	return nil
}

type insightsArgs struct {
	Fields        []string          `json:"fields"`
	DatePreset    *string           `json:"date_preset"`
	TimeRange     *types.TimeRange  `json:"time_range"`
	TimeRanges    []types.TimeRange `json:"time_ranges"`
	TimeIncrement *flexString       `json:"time_increment"`
	Level         string            `json:"level"`

	ActionAttributionWindows []string `json:"action_attribution_windows"`
	ActionBreakdowns         []string `json:"action_breakdowns"`
	ActionReportTime         string   `json:"action_report_time"`
	Breakdowns               []string `json:"breakdowns"`

	DefaultSummary               bool  `json:"default_summary"`
	UseAccountAttributionSetting bool  `json:"use_account_attribution_setting"`
	UseUnifiedAttributionSetting *bool `json:"use_unified_attribution_setting"`

	Filtering json.RawMessage `json:"filtering"`
	Sort      string          `json:"sort"`
	Limit     *flexInt        `json:"limit"`
	After     string          `json:"after"`
	Before    string          `json:"before"`
	Offset    *flexInt        `json:"offset"`
	Since     flexString      `json:"since"`
	Until     flexString      `json:"until"`
	Locale    string          `json:"locale"`
}

// query overlays the supplied arguments on the tool defaults.
func (a *insightsArgs) query() (graph.InsightsQuery, error) {
	q := graph.DefaultInsightsQuery()

	q.Fields = a.Fields
	if a.DatePreset != nil {
		q.DatePreset = strings.TrimSpace(*a.DatePreset)
	}
	if a.TimeRange != nil && (a.TimeRange.Since != "" || a.TimeRange.Until != "") {
		q.TimeRange = a.TimeRange
	}
	q.TimeRanges = a.TimeRanges
	if a.TimeIncrement != nil {
		q.TimeIncrement = string(*a.TimeIncrement)
	}
	q.Level = strings.TrimSpace(a.Level)

	q.ActionAttributionWindows = a.ActionAttributionWindows
	q.ActionBreakdowns = a.ActionBreakdowns
	q.ActionReportTime = a.ActionReportTime
	q.Breakdowns = a.Breakdowns

	q.DefaultSummary = a.DefaultSummary
	q.UseAccountAttributionSetting = a.UseAccountAttributionSetting
	if a.UseUnifiedAttributionSetting != nil {
		q.UseUnifiedAttributionSetting = *a.UseUnifiedAttributionSetting
	}

	filtering, err := decodeFiltering(a.Filtering)
	if err != nil {
		return graph.InsightsQuery{}, err
	}
	q.Filtering = filtering

	q.Sort = a.Sort
	if a.Limit != nil {
		limit := int(*a.Limit)
		q.Limit = &limit
	}
	q.After = a.After
	q.Before = a.Before
	if a.Offset != nil {
		offset := int(*a.Offset)
		q.Offset = &offset
	}
	q.Since = string(a.Since)
	q.Until = string(a.Until)
	q.Locale = a.Locale

	return q, nil
}

// decodeFiltering accepts a list of filters, a single filter object, or
// either of those as JSON text.
func decodeFiltering(raw json.RawMessage) ([]types.Filter, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("filtering: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		raw = json.RawMessage(text)
	}

	if raw[0] == '{' {
		var single types.Filter
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("filtering: %w", err)
		}
		return []types.Filter{single}, nil
	}

	var filters []types.Filter
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}
	return filters, nil
}

// bindArguments decodes the call's arguments into target.
func bindArguments(request mcp.CallToolRequest, target interface{}) error {
	args := request.GetArguments()
	if args == nil {
		args = map[string]any{}
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
