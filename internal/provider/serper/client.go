package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 20

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
		cfg.BaseURL = "https://google.serper.dev"
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

func (c *Client) Name() string { return "serper" }

func (c *Client) Available() bool { return c.apiKey != "" }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
	Videos  []serperVideo  `json:"videos"`
}

type serperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperVideo struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	ImageURL string `json:"imageUrl"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	resp, err := c.doSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		if len(items) >= limit {
			break
		}
		items = append(items, domain.Item{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
			Source:  c.Name(),
		})
	}

	return items, nil
}

// SearchVideos отдает видео-блок того же SERP-ответа
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	resp, err := c.doSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(resp.Videos))
	for _, v := range resp.Videos {
		if len(items) >= limit {
			break
		}
		source := v.Source
		if source == "" {
			source = c.Name()
		}
		items = append(items, domain.Item{
			Title:     v.Title,
			Link:      v.Link,
			Thumbnail: v.ImageURL,
			Source:    source,
		})
	}

	return items, nil
}

func (c *Client) doSearch(ctx context.Context, query string, limit int) (*serperResponse, error) {
	if !c.Available() {
		return nil, provider.ErrNotConfigured
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var resp serperResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	return &resp, nil
}
