// Package factapi provides the Google Fact Check Tools client for flowcheck.
package factapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/thebtf/flowcheck/pkg/models"
)

// DefaultBaseURL is the claims:search endpoint.
const DefaultBaseURL = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// ErrMissingAPIKey is returned when the client has no API key.
var ErrMissingAPIKey = errors.New("fact check API key not configured")

// Config configures a Client.
type Config struct {
	HTTPClient   *http.Client
	APIKey       string
	BaseURL      string
	LanguageCode string
	Timeout      time.Duration
	RPS          float64
	Burst        int
}

// Client queries the claims:search endpoint.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	apiKey   string
	baseURL  string
	language string
}

// New creates a client. Zero values fall back to defaults; RPS <= 0 disables rate limiting.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		http:     httpClient,
		limiter:  limiter,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		language: cfg.LanguageCode,
	}
}

// errorEnvelope is the Google API error body.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Search looks up query and returns the response document unchanged.
// Failures are *TransportError or *RemoteError.
func (c *Client) Search(ctx context.Context, query string) (models.Payload, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "rate limit", Err: err}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("languageCode", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: "read body", Err: err}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fact check search completed")

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp.StatusCode, body)
	}

	payload := models.Payload(body)
	if !payload.Valid() {
		return nil, &RemoteError{Status: resp.StatusCode, Message: "response is not valid JSON"}
	}
	return payload, nil
}

func remoteError(status int, body []byte) *RemoteError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return &RemoteError{Status: status, Message: env.Error.Message}
	}
	return &RemoteError{Status: status, Message: http.StatusText(status)}
}
