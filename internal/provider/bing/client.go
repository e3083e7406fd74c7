package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 50

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.bing.microsoft.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string { return "bing" }

func (c *Client) Available() bool { return c.apiKey != "" }

type bingResponse struct {
	WebPages struct {
		Value []bingResult `json:"value"`
	} `json:"webPages"`
}

type bingResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	if !c.Available() {
		return nil, provider.ErrNotConfigured
	}

	limit = provider.ClampLimit(limit, maxResults)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v7.0/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var resp bingResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(resp.WebPages.Value))
	for _, r := range resp.WebPages.Value {
		if len(items) >= limit {
			break
		}
		items = append(items, domain.Item{
			Title:   r.Name,
			Link:    r.URL,
			Snippet: r.Snippet,
			Source:  c.Name(),
		})
	}

	return items, nil
}
