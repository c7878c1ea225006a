// Package graph talks to the Facebook Graph API: query encoding for the
// insights edge and a thin GET client that hands back raw JSON bodies.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rogeecn/fbads-mcp/pkg/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v22.0"
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "fbads-mcp"
)

// APIError is returned for non-2xx Graph responses.
type APIError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api: %s: status=%d body=%s", e.Endpoint, e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRateLimit caps outgoing requests per second; zero or less disables it.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient builds a client rooted at baseURL (host plus API version).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues GET {base}/{path}?{params} and returns the body unchanged.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return c.do(ctx, reqURL, endpoint)
}

// GetURL replays an absolute URL previously returned by the API.
func (c *Client) GetURL(ctx context.Context, rawURL string) (json.RawMessage, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("graph api: parse url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("graph api: not an absolute http(s) url: %q", rawURL)
	}
	return c.do(ctx, rawURL, parsed.Scheme+"://"+parsed.Host+parsed.Path)
}

// Me fetches the identity behind accessToken.
func (c *Client) Me(ctx context.Context, accessToken string) (*types.User, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)

	body, err := c.Get(ctx, "me", params)
	if err != nil {
		return nil, err
	}

	var user types.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("graph api: parse /me: %w", err)
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, reqURL, endpoint string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("graph api: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("graph api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, access_token included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("graph api: %s: send request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graph api: read response: %w", err)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("graph api request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Endpoint:   endpoint,
		}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("graph api: %s: response is not valid json", endpoint)
	}

	return json.RawMessage(body), nil
}
