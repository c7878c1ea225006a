package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rogeecn/fbads-mcp/internal/credential"
	"github.com/rogeecn/fbads-mcp/internal/retry"
	"github.com/rogeecn/fbads-mcp/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollAttempts = 6
)

// Status is the terminal outcome of a refresh.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Result reports how a refresh ended. Failures are results, not errors.
type Result struct {
	Status    Status     `json:"status"`
	Message   string     `json:"message"`
	ExpiresIn int64      `json:"expires_in,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	UserName  string     `json:"user_name,omitempty"`
}

// Verifier confirms a freshly issued token is usable.
type Verifier interface {
	Me(ctx context.Context, accessToken string) (*types.User, error)
}

type Refresher struct {
	client      *Client
	credentials credential.Provider
	verifier    Verifier
	poll        retry.Config

	browserOpener      func(ctx context.Context, targetURL string) error
	requestIDGenerator func() string
}

type RefresherOption func(*Refresher)

func WithBrowserOpener(fn func(ctx context.Context, targetURL string) error) RefresherOption {
	return func(r *Refresher) {
		if fn != nil {
			r.browserOpener = fn
		}
	}
}

func WithRequestIDGenerator(fn func() string) RefresherOption {
	return func(r *Refresher) {
		if fn != nil {
			r.requestIDGenerator = fn
		}
	}
}

func NewRefresher(client *Client, credentials credential.Provider, verifier Verifier, poll retry.Config, opts ...RefresherOption) *Refresher {
	if poll.Interval <= 0 {
		poll.Interval = defaultPollInterval
	}
	if poll.MaxAttempts <= 0 {
		poll.MaxAttempts = defaultPollAttempts
	}

	r := &Refresher{
		client:             client,
		credentials:        credentials,
		verifier:           verifier,
		poll:               poll,
		browserOpener:      openBrowser,
		requestIDGenerator: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs one full handshake: invalidate, open the consent page, poll,
// verify, persist. Only context cancellation is returned as an error.
func (r *Refresher) Refresh(ctx context.Context, scope string) (*Result, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = DefaultScope
	}

	r.credentials.Invalidate()

	requestID := r.requestIDGenerator()
	logger := log.With().Str("request_id", requestID).Logger()

	startURL := r.client.StartURL(requestID, scope)
	logger.Info().
		Str("scope", scope).
		Msg("oauth refresher: opening browser for authorization")
	if err := r.browserOpener(ctx, startURL); err != nil {
		logger.Warn().
			Err(err).
			Str("url", startURL).
			Msg("oauth refresher: open browser failed, visit the url manually")
	}

	var final *PollResponse
	err := retry.Poll(ctx, r.poll, func(ctx context.Context, attempt int) (bool, error) {
		resp, err := r.client.Poll(ctx, requestID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("oauth refresher: poll failed")
			return false, nil
		}

		switch resp.Status {
		case pollStatusPending:
			logger.Info().
				Int("attempt", attempt).
				Int("max_attempts", r.poll.MaxAttempts).
				Msg("oauth refresher: authorization pending")
			return false, nil
		case pollStatusError, pollStatusSuccess:
			final = resp
			return true, nil
		default:
			logger.Warn().
				Str("status", resp.Status).
				Int("attempt", attempt).
				Msg("oauth refresher: unknown poll status")
			return false, nil
		}
	})
	if errors.Is(err, retry.ErrExhausted) {
		logger.Warn().Msg("oauth refresher: authorization timed out")
		return &Result{
			Status:  StatusTimeout,
			Message: fmt.Sprintf("Timeout: Authentication did not complete within %d seconds", r.budgetSeconds()),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	if final.Status == pollStatusError {
		msg := strings.TrimSpace(final.Message)
		if msg == "" {
			msg = "Unknown error"
		}
		logger.Warn().Str("message", msg).Msg("oauth refresher: auth server reported error")
		return &Result{Status: StatusError, Message: msg}, nil
	}

	return r.complete(ctx, final), nil
}

// complete verifies the token before anything is written.
func (r *Refresher) complete(ctx context.Context, resp *PollResponse) *Result {
	token := resp.Token()
	if token.AccessToken == "" {
		return &Result{Status: StatusError, Message: "auth server returned an empty access token"}
	}

	user, err := r.verifier.Me(ctx, token.AccessToken)
	if err != nil {
		log.Warn().Err(err).Msg("oauth refresher: token verification failed")
		return &Result{Status: StatusError, Message: fmt.Sprintf("token verification failed: %v", err)}
	}

	if err := r.credentials.Set(token.AccessToken); err != nil {
		log.Error().Err(err).Msg("oauth refresher: persist token failed")
		return &Result{Status: StatusError, Message: fmt.Sprintf("persist token: %v", err)}
	}

	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = "Unknown"
	}

	result := &Result{
		Status:   StatusSuccess,
		Message:  fmt.Sprintf("Access token successfully refreshed and saved for user %s", name),
		UserID:   user.ID,
		UserName: user.Name,
	}
	if secs, ok := resp.ExpiresInSeconds(); ok {
		result.ExpiresIn = secs
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		result.ExpiresAt = &expiry
	}

	log.Info().
		Str("user_id", user.ID).
		Int64("expires_in", result.ExpiresIn).
		Msg("oauth refresher: token refreshed")
	return result
}

func (r *Refresher) budgetSeconds() int {
	return int((r.poll.Interval * time.Duration(r.poll.MaxAttempts)).Seconds())
}
