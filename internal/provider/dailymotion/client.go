package dailymotion

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

const maxResults = 20

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client - публичный API Dailymotion, ключи не нужны
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.dailymotion.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string { return "dailymotion" }

func (c *Client) Available() bool { return true }

type dmResponse struct {
	List []dmVideo `json:"list"`
}

type dmVideo struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail_url"`
	Owner       string `json:"owner.screenname"`
	CreatedTime int64  `json:"created_time"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,url,thumbnail_url,owner.screenname,created_time")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var resp dmResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(resp.List))
	for _, v := range resp.List {
		if len(items) >= limit {
			break
		}
		if v.Title == "" || v.URL == "" {
			continue
		}

		source := v.Owner
		if source == "" {
			source = "Dailymotion"
		}

		var published *time.Time
		if v.CreatedTime > 0 {
			t := time.Unix(v.CreatedTime, 0).UTC()
			published = &t
		}

		items = append(items, domain.Item{
			Title:       v.Title,
			Link:        v.URL,
			Thumbnail:   v.Thumbnail,
			Source:      source,
			PublishedAt: published,
		})
	}

	return items, nil
}
