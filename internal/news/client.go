// Package news provides the NewsAPI client for flowcheck.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the NewsAPI everything endpoint.
const DefaultBaseURL = "https://newsapi.org/v2/everything"

// DefaultQuery is used when the caller gives none.
const DefaultQuery = "innovation"

const maxBodyBytes = 4 << 20

// ErrMissingAPIKey is returned when no NewsAPI key is configured.
var ErrMissingAPIKey = errors.New("news API key not configured")

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is one NewsAPI result.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// APIError is a non-ok NewsAPI answer.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("news api %d %s: %s", e.Status, e.Code, e.Message)
}

type response struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string
	Language   string
	Timeout    time.Duration
	PageSize   int
}

// Client fetches articles from NewsAPI.
type Client struct {
	http     *http.Client
	apiKey   string
	baseURL  string
	language string
	pageSize int
}

// New creates a client with English results, five per page, by default.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:     httpClient,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		pageSize: cfg.PageSize,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Articles searches for query; an empty query searches DefaultQuery.
func (c *Client) Articles(ctx context.Context, query string) ([]Article, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	if query == "" {
		query = DefaultQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", c.language)
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read news response: %w", err)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: "invalidResponse", Message: err.Error()}
	}
	if resp.StatusCode != http.StatusOK || out.Status != "ok" {
		return nil, &APIError{Status: resp.StatusCode, Code: out.Code, Message: out.Message}
	}

	log.Debug().Str("query", query).Int("articles", len(out.Articles)).Msg("News fetched")
	if out.Articles == nil {
		out.Articles = []Article{}
	}
	return out.Articles, nil
}
