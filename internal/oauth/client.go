// Package oauth drives the browser-based token handshake against the
// auth-coordination server: open the consent page, then poll for the
// token by correlation identifier.
package oauth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL = "https://reimagine.gomarble.ai"
	DefaultScope   = "email,ads_read,ads_management,public_profile,business_management,catalog_management"

	startPath    = "/api/authorise/facebook/start"
	getTokenPath = "/api/authorise/facebook/get-token"
)

const (
	pollStatusPending = "pending"
	pollStatusError   = "error"
	pollStatusSuccess = "success"
)

// PollResponse is the get-token payload.
type PollResponse struct {
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
	ExpiresIn   json.RawMessage `json:"expires_in,omitempty"`
}

// ExpiresInSeconds accepts both a JSON number and a quoted number.
func (p *PollResponse) ExpiresInSeconds() (int64, bool) {
	raw := strings.Trim(strings.TrimSpace(string(p.ExpiresIn)), `"`)
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return secs, true
}

// Token converts a successful poll into an oauth2 token.
func (p *PollResponse) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken: strings.TrimSpace(p.AccessToken),
		TokenType:   "Bearer",
	}
	if secs, ok := p.ExpiresInSeconds(); ok {
		token.Expiry = time.Now().UTC().Add(time.Duration(secs) * time.Second)
	}
	return token
}

// PollStatusError is returned by Poll for non-200 answers.
type PollStatusError struct {
	StatusCode int
	Body       string
}

func (e *PollStatusError) Error() string {
	return fmt.Sprintf("auth server: status=%d body=%s", e.StatusCode, e.Body)
}

type Client struct {
	authURL    string
	httpClient *http.Client
}

// NewClient builds a handshake client. TLS verification of the auth server
// is disabled only when insecureSkipVerify is set.
func NewClient(authURL string, timeout time.Duration, insecureSkipVerify bool) *Client {
	authURL = strings.TrimSuffix(strings.TrimSpace(authURL), "/")
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via FBADS_AUTH_INSECURE_SKIP_VERIFY
	}

	return &Client{
		authURL:    authURL,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}
}

// StartURL is the browser-facing consent entry point.
func (c *Client) StartURL(requestID, scope string) string {
	params := url.Values{}
	params.Set("request_id", requestID)
	params.Set("scope", scope)
	return c.authURL + startPath + "?" + params.Encode()
}

// PollURL is where the token appears once the user finished consent.
func (c *Client) PollURL(requestID string) string {
	params := url.Values{}
	params.Set("request_id", requestID)
	return c.authURL + getTokenPath + "?" + params.Encode()
}

// Poll performs one get-token request.
func (c *Client) Poll(ctx context.Context, requestID string) (*PollResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PollURL(requestID), nil)
	if err != nil {
		return nil, fmt.Errorf("poll token: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll token: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("poll token: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &PollStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload PollResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("poll token: parse json: %w", err)
	}
	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))

	return &payload, nil
}

func openBrowser(ctx context.Context, targetURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", targetURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", targetURL)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", targetURL)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
