package hackernews

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
	BaseURL string
	Timeout time.Duration
	// Days ограничивает выдачу последними N сутками (0 = без фильтра)
	Days int
}

// Client ходит в публичный Algolia-индекс Hacker News, ключи не нужны
type Client struct {
	baseURL string
	days    int
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://hn.algolia.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		days:    cfg.Days,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string { return "hackernews" }

func (c *Client) Available() bool { return true }

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	ObjectID  string `json:"objectID"`
	CreatedAt int64  `json:"created_at_i"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	params := url.Values{}
	params.Set("query", query)
	params.Set("tags", "story")
	params.Set("hitsPerPage", strconv.Itoa(limit))
	endpoint := "/api/v1/search"

	if c.days > 0 {
		cutoff := time.Now().Add(-time.Duration(c.days) * 24 * time.Hour).Unix()
		params.Set("numericFilters", fmt.Sprintf("created_at_i>%d", cutoff))
		endpoint = "/api/v1/search_by_date"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var resp hnResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if len(items) >= limit {
			break
		}
		link := h.URL
		if link == "" {
			// текстовые посты без внешней ссылки ведут на тред
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		var published *time.Time
		if h.CreatedAt > 0 {
			t := time.Unix(h.CreatedAt, 0).UTC()
			published = &t
		}
		items = append(items, domain.Item{
			Title:       h.Title,
			Link:        link,
			Source:      "Hacker News",
			PublishedAt: published,
		})
	}

	return items, nil
}
