package graph

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newJSONResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/v22.0/act_1/insights" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("access_token"); got != "token-123" {
			t.Fatalf("access_token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"impressions":"10"}],"paging":{"cursors":{"after":"A"}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/v22.0/")
	params := url.Values{}
	params.Set("access_token", "token-123")

	body, err := client.Get(context.Background(), "act_1/insights", params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"data":[{"impressions":"10"}],"paging":{"cursors":{"after":"A"}}}` {
		t.Fatalf("body = %s", body)
	}
}

func TestClientGetAPIError(t *testing.T) {
	client := NewClient("https://graph.example.com/v22.0", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return newJSONResponse(http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token.","code":190}}`), nil
		}),
	}))

	_, err := client.Get(context.Background(), "me", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Get() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("StatusCode = %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "Invalid OAuth access token.") {
		t.Fatalf("Body = %q", apiErr.Body)
	}
	if apiErr.Endpoint != "https://graph.example.com/v22.0/me" {
		t.Fatalf("Endpoint = %q", apiErr.Endpoint)
	}
	if strings.Contains(err.Error(), "access_token") {
		t.Fatalf("error leaks query string: %v", err)
	}
}

func TestClientGetInvalidJSON(t *testing.T) {
	client := NewClient("https://graph.example.com/v22.0", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return newJSONResponse(http.StatusOK, `<html>oops</html>`), nil
		}),
	}))

	if _, err := client.Get(context.Background(), "me", nil); err == nil {
		t.Fatal("Get() error = nil, want invalid json error")
	}
}

func TestClientGetURLReplaysVerbatim(t *testing.T) {
	const next = "https://graph.facebook.com/v22.0/act_1/insights?access_token=tok&after=QVFI&limit=25"

	client := NewClient("https://graph.example.com/v22.0", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.String() != next {
				t.Fatalf("url = %s, want %s", r.URL.String(), next)
			}
			return newJSONResponse(http.StatusOK, `{"data":[]}`), nil
		}),
	}))

	body, err := client.GetURL(context.Background(), next)
	if err != nil {
		t.Fatalf("GetURL() error = %v", err)
	}
	if string(body) != `{"data":[]}` {
		t.Fatalf("body = %s", body)
	}
}

func TestClientGetURLRejectsRelative(t *testing.T) {
	client := NewClient("")
	for _, raw := range []string{"", "/v22.0/me", "ftp://graph.facebook.com/x"} {
		if _, err := client.GetURL(context.Background(), raw); err == nil {
			t.Fatalf("GetURL(%q) error = nil, want non-nil", raw)
		}
	}
}

func TestClientMe(t *testing.T) {
	client := NewClient("https://graph.example.com/v22.0", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v22.0/me" {
				t.Fatalf("path = %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("access_token"); got != "fresh" {
				t.Fatalf("access_token = %q", got)
			}
			return newJSONResponse(http.StatusOK, `{"id":"42","name":"Ada"}`), nil
		}),
	}))

	user, err := client.Me(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if user.ID != "42" || user.Name != "Ada" {
		t.Fatalf("user = %+v", user)
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	calls := 0
	client := NewClient("https://graph.example.com/v22.0",
		WithRateLimit(0.001),
		WithHTTPClient(&http.Client{
			Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				calls++
				return newJSONResponse(http.StatusOK, `{}`), nil
			}),
		}),
	)

	if _, err := client.Get(context.Background(), "me", nil); err != nil {
		t.Fatalf("first Get() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Get(ctx, "me", nil); err == nil {
		t.Fatal("second Get() error = nil, want rate limit error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestClientUserAgent(t *testing.T) {
	var agents []string
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		agents = append(agents, req.Header.Get("User-Agent"))
		return newJSONResponse(http.StatusOK, `{}`), nil
	})

	plain := NewClient("https://graph.test/v22.0", WithHTTPClient(&http.Client{Transport: transport}))
	if _, err := plain.Get(context.Background(), "me", nil); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	custom := NewClient("https://graph.test/v22.0",
		WithHTTPClient(&http.Client{Transport: transport}),
		WithUserAgent("fbads-mcp/1.2.3"),
	)
	if _, err := custom.Get(context.Background(), "me", nil); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if agents[0] != "fbads-mcp" || agents[1] != "fbads-mcp/1.2.3" {
		t.Fatalf("user agents = %v", agents)
	}
}

func TestClientTransportErrorHidesToken(t *testing.T) {
	dialErr := errors.New("dial tcp 127.0.0.1:1: connection refused")
	client := NewClient("https://graph.example.com/v22.0", WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, dialErr
		}),
	}))

	params := url.Values{}
	params.Set("access_token", "EAAB-SECRET")
	_, err := client.Get(context.Background(), "me", params)
	if err == nil {
		t.Fatal("Get() error = nil, want transport error")
	}
	if strings.Contains(err.Error(), "EAAB-SECRET") || strings.Contains(err.Error(), "access_token") {
		t.Fatalf("error leaks token: %v", err)
	}
	if !strings.Contains(err.Error(), "https://graph.example.com/v22.0/me") {
		t.Fatalf("error missing endpoint: %v", err)
	}
	if !errors.Is(err, dialErr) {
		t.Fatalf("error = %v, want wrapped transport error", err)
	}

	_, err = client.GetURL(context.Background(), "https://graph.example.com/v22.0/act_1/insights?access_token=EAAB-SECRET&after=X")
	if err == nil || strings.Contains(err.Error(), "EAAB-SECRET") {
		t.Fatalf("GetURL() error = %v, want redacted transport error", err)
	}
}
