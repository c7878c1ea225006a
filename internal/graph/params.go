package graph

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rogeecn/fbads-mcp/pkg/types"
)

const (
	DefaultDatePreset    = "last_30d"
	TimeIncrementAllDays = "all_days"
)

// InsightsQuery holds the optional options of an insights request.
// Zero values mean "not supplied": empty strings, nil slices, nil pointers
// and false flags never reach the query string.
type InsightsQuery struct {
	Fields        []string
	DatePreset    string
	TimeRange     *types.TimeRange
	TimeRanges    []types.TimeRange
	TimeIncrement string
	Level         string

	ActionAttributionWindows []string
	ActionBreakdowns         []string
	ActionReportTime         string
	Breakdowns               []string

	DefaultSummary               bool
	UseAccountAttributionSetting bool
	UseUnifiedAttributionSetting bool

	Filtering []types.Filter
	Sort      string
	Limit     *int
	After     string
	Before    string
	Offset    *int
	Since     string
	Until     string
	Locale    string
}

// DefaultInsightsQuery returns the defaults the insights tools start from.
func DefaultInsightsQuery() InsightsQuery {
	return InsightsQuery{
		DatePreset:                   DefaultDatePreset,
		TimeIncrement:                TimeIncrementAllDays,
		UseUnifiedAttributionSetting: true,
	}
}

// BuildInsightsParams encodes q into Graph API query parameters.
//
// Time selection is exclusive by precedence: time_ranges, then time_range,
// then since/until, then date_preset. Only the winning tier is encoded.
func BuildInsightsParams(accessToken string, q InsightsQuery) (url.Values, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)

	setList(params, "fields", q.Fields)

	switch {
	case len(q.TimeRanges) > 0:
		encoded, err := json.Marshal(q.TimeRanges)
		if err != nil {
			return nil, fmt.Errorf("build insights params: encode time_ranges: %w", err)
		}
		params.Set("time_ranges", string(encoded))
	case q.TimeRange != nil:
		encoded, err := json.Marshal(q.TimeRange)
		if err != nil {
			return nil, fmt.Errorf("build insights params: encode time_range: %w", err)
		}
		params.Set("time_range", string(encoded))
	case q.Since != "" || q.Until != "":
		setString(params, "since", q.Since)
		setString(params, "until", q.Until)
	default:
		setString(params, "date_preset", q.DatePreset)
	}

	if q.TimeIncrement != TimeIncrementAllDays {
		setString(params, "time_increment", q.TimeIncrement)
	}

	setString(params, "level", q.Level)

	setList(params, "action_attribution_windows", q.ActionAttributionWindows)
	setList(params, "action_breakdowns", q.ActionBreakdowns)
	setString(params, "action_report_time", q.ActionReportTime)
	setList(params, "breakdowns", q.Breakdowns)

	setFlag(params, "default_summary", q.DefaultSummary)
	setFlag(params, "use_account_attribution_setting", q.UseAccountAttributionSetting)
	setFlag(params, "use_unified_attribution_setting", q.UseUnifiedAttributionSetting)

	if len(q.Filtering) > 0 {
		encoded, err := json.Marshal(q.Filtering)
		if err != nil {
			return nil, fmt.Errorf("build insights params: encode filtering: %w", err)
		}
		params.Set("filtering", string(encoded))
	}
	setString(params, "sort", q.Sort)
	setInt(params, "limit", q.Limit)

	setString(params, "after", q.After)
	setString(params, "before", q.Before)
	setInt(params, "offset", q.Offset)

	setString(params, "locale", q.Locale)

	return params, nil
}

// FieldsParams builds the access_token + fields pair used by object reads.
func FieldsParams(accessToken string, fields []string) url.Values {
	params := url.Values{}
	params.Set("access_token", accessToken)
	setList(params, "fields", fields)
	return params
}

func setString(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setList(params url.Values, key string, values []string) {
	if len(values) > 0 {
		params.Set(key, strings.Join(values, ","))
	}
}

func setFlag(params url.Values, key string, value bool) {
	if value {
		params.Set(key, "true")
	}
}

func setInt(params url.Values, key string, value *int) {
	if value != nil {
		params.Set(key, strconv.Itoa(*value))
	}
}
