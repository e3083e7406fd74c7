package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
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

// Client - бесплатный fallback без ключей (публичный MediaWiki API)
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://en.wikipedia.org"
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

func (c *Client) Name() string { return "wikipedia" }

func (c *Client) Available() bool { return true }

type wikiResponse struct {
	Query struct {
		Search []wikiResult `json:"search"`
	} `json:"query"`
}

type wikiResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("format", "json")
	params.Set("srsearch", query)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", provider.UserAgent)

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var resp wikiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		if len(items) >= limit {
			break
		}
		items = append(items, domain.Item{
			Title:   r.Title,
			Link:    c.articleURL(r.Title),
			Snippet: provider.StripTags(r.Snippet),
			Source:  c.Name(),
		})
	}

	return items, nil
}

func (c *Client) articleURL(title string) string {
	return c.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
