package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"
	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/metrics"
	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
)

// RelayConfig configures the token exchange call.
type RelayConfig struct {
	BaseURL       string
	Path          string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// TokenExchangeRelay trades a Google id_token for the backend's user record
// with a single POST {"id_token": ...}.
type TokenExchangeRelay struct {
	url     string
	client  *retry.Client
	metrics metrics.Recorder
	log     logging.Logger
}

type exchangeRequest struct {
	IDToken string `json:"id_token"`
}

func NewTokenExchangeRelay(cfg RelayConfig, rec metrics.Recorder, log logging.Logger) (*TokenExchangeRelay, error) {
	hc, err := httpclient.NewAuthClient(httpclient.AuthModeNone, "",
		httpclient.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay http client: %w", err)
	}

	rc, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(hc),
		retry.WithMaxRetries(cfg.MaxRetries),
		retry.WithInitialRetryDelay(cfg.RetryDelay),
		retry.WithMaxRetryDelay(cfg.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay retry client: %w", err)
	}

	if rec == nil {
		rec = metrics.Noop{}
	}
	return &TokenExchangeRelay{
		url:     strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		client:  rc,
		metrics: rec,
		log:     log,
	}, nil
}

// Exchange posts the assertion and returns the user. Only Google
// assertions are relayed. Any failure, including a response that is not a
// JSON object with a non-empty id, wraps common.ErrTokenExchangeFailed.
func (r *TokenExchangeRelay) Exchange(ctx context.Context, a *auth.Assertion) (u *models.User, err error) {
	if a == nil || a.Provider != common.ProviderGoogle {
		return nil, common.ErrUnsupportedProvider
	}
	if a.IDToken == "" {
		return nil, fmt.Errorf("%w: empty id_token", common.ErrTokenExchangeFailed)
	}

	start := time.Now()
	defer func() {
		r.metrics.RecordTokenExchange(err == nil, time.Since(start))
	}()

	payload, err := json.Marshal(exchangeRequest{IDToken: a.IDToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchangeFailed, err)
	}

	resp, err := r.client.Post(ctx, r.url, retry.WithBody("application/json", bytes.NewReader(payload)))
	if err != nil {
		r.log.Warn(ctx, "token exchange transport error", "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", common.ErrTokenExchangeFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.Warn(ctx, "token exchange rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: HTTP %d", common.ErrTokenExchangeFailed, resp.StatusCode)
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchangeFailed, err)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenExchangeFailed, err)
	}
	return &user, nil
}
