package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rogeecn/fbads-mcp/internal/oauth"
)

const (
	datePresetOptions = "today, yesterday, this_month, last_month, this_quarter, maximum, last_3d, last_7d, " +
		"last_14d, last_28d, last_30d, last_90d, last_week_mon_sun, last_week_sun_sat, last_quarter, " +
		"last_year, this_week_mon_today, this_week_sun_today, this_year"

	timeRangeSchemaDesc = "Object with 'since' and 'until' in YYYY-MM-DD"
)

var timeRangeProperties = map[string]any{
	"since": map[string]any{"type": "string", "description": "Start date, YYYY-MM-DD"},
	"until": map[string]any{"type": "string", "description": "End date, YYYY-MM-DD"},
}

func listAdAccountsTool() mcp.Tool {
	return mcp.NewTool("list_ad_accounts",
		mcp.WithDescription("List down the ad accounts and their names associated with your Facebook account"),
	)
}

func adAccountDetailsTool() mcp.Tool {
	return mcp.NewTool("get_details_of_ad_account",
		mcp.WithDescription("Get details of a specific ad account as per the fields provided"),
		mcp.WithString("act_id",
			mcp.Required(),
			mcp.Description("The act ID of the ad account, example: act_1234567890"),
		),
		mcp.WithArray("fields",
			mcp.WithStringItems(),
			mcp.Description("Fields to read. Defaults: name, business_name, age, account_status, balance, "+
				"amount_spent, attribution_spec, account_id, business, business_city, "+
				"brand_safety_content_filter_levels, currency, created_time, id"),
		),
	)
}

// insightsTool declares one insights tool; the options are shared by all
// four object levels and differ only in the id argument and default level.
func insightsTool(name, description, idName, idDescription, defaultLevel string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString(idName,
			mcp.Required(),
			mcp.Description(idDescription),
		),
		mcp.WithArray("fields",
			mcp.WithStringItems(),
			mcp.Description("Metrics to retrieve, e.g. impressions, clicks, spend, ctr, reach, actions, cpc, cpm"),
		),
		mcp.WithString("date_preset",
			mcp.DefaultString("last_30d"),
			mcp.Description("Relative time range: "+datePresetOptions+
				". Ignored if time_range, time_ranges, since or until is provided"),
		),
		mcp.WithObject("time_range",
			mcp.Properties(timeRangeProperties),
			mcp.Description(timeRangeSchemaDesc+". Overrides date_preset; ignored if time_ranges is provided"),
		),
		mcp.WithArray("time_ranges",
			mcp.Items(map[string]any{"type": "object", "properties": timeRangeProperties}),
			mcp.Description("Several time ranges to compare. Overrides time_range and date_preset"),
		),
		mcp.WithString("time_increment",
			mcp.DefaultString("all_days"),
			mcp.Description("Days per data point (1-90), 'monthly', or 'all_days' for one row"),
		),
		mcp.WithString("level",
			mcp.Enum("account", "campaign", "adset", "ad"),
			mcp.Description("Aggregation level. Default: "+defaultLevel),
		),
		mcp.WithArray("action_attribution_windows",
			mcp.WithStringItems(),
			mcp.Description("Attribution windows, e.g. 1d_view, 7d_view, 28d_view, 1d_click, 7d_click, 28d_click, dda, default"),
		),
		mcp.WithArray("action_breakdowns",
			mcp.WithStringItems(),
			mcp.Description("Segments actions, e.g. action_device, action_type, conversion_destination, action_destination"),
		),
		mcp.WithString("action_report_time",
			mcp.Enum("impression", "conversion", "mixed"),
			mcp.Description("When actions are counted"),
		),
		mcp.WithArray("breakdowns",
			mcp.WithStringItems(),
			mcp.Description("Result dimensions, e.g. age, gender, country, region, dma, impression_device, "+
				"publisher_platform, platform_position, device_platform"),
		),
		mcp.WithBoolean("default_summary",
			mcp.DefaultBool(false),
			mcp.Description("Include an additional summary row"),
		),
		mcp.WithBoolean("use_account_attribution_setting",
			mcp.DefaultBool(false),
			mcp.Description("Use the ad account attribution settings"),
		),
		mcp.WithBoolean("use_unified_attribution_setting",
			mcp.DefaultBool(true),
			mcp.Description("Use the ad set level unified attribution settings, as Ads Manager does"),
		),
		mcp.WithArray("filtering",
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field":    map[string]any{"type": "string"},
					"operator": map[string]any{"type": "string"},
					"value":    map[string]any{},
				},
			}),
			mcp.Description("Filter objects with field, operator and value, e.g. "+
				`[{"field":"spend","operator":"GREATER_THAN","value":50}]`),
		),
		mcp.WithString("sort",
			mcp.Description("{field}_ascending or {field}_descending, e.g. impressions_descending"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows per page"),
		),
		mcp.WithString("after",
			mcp.Description("Cursor from paging.cursors.after of a previous response"),
		),
		mcp.WithString("before",
			mcp.Description("Cursor from paging.cursors.before of a previous response"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Rows to skip; prefer cursors"),
		),
		mcp.WithString("since",
			mcp.Description("Start timestamp (Unix or strtotime) for time-based paging, used without time_range"),
		),
		mcp.WithString("until",
			mcp.Description("End timestamp (Unix or strtotime) for time-based paging, used without time_range"),
		),
		mcp.WithString("locale",
			mcp.Description("Locale for text in the response, e.g. en_US"),
		),
	)
}

func fetchPaginationURLTool() mcp.Tool {
	return mcp.NewTool("fetch_pagination_url",
		mcp.WithDescription("Fetch data from a Facebook Graph API pagination URL (paging.next or paging.previous)"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The complete pagination URL; it already carries the token and parameters"),
		),
	)
}

func refreshTokenTool() mcp.Tool {
	return mcp.NewTool("refresh_facebook_token",
		mcp.WithDescription("Refresh the Facebook access token. Opens a browser window for the user "+
			"to authenticate, then waits for the auth server to hand over the new token"),
		mcp.WithString("scope",
			mcp.DefaultString(oauth.DefaultScope),
			mcp.Description("Comma-separated permission scopes to request"),
		),
	)
}
