package googlenews

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 30

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client читает публичный RSS-фид Google News - еще один бесплатный
// fallback без ключей, когда платные поисковики не настроены
type Client struct {
	baseURL string
	timeout time.Duration
	parser  *gofeed.Parser
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://news.google.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	parser := gofeed.NewParser()
	parser.UserAgent = provider.UserAgent

	return &Client{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		parser:  parser,
		logger:  logger,
	}
}

func (c *Client) Name() string { return "googlenews" }

func (c *Client) Available() bool { return true }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	feedURL := c.baseURL + "/rss/search?q=" + url.QueryEscape(query) + "&hl=en-US&gl=US&ceid=US:en"

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailed, err)
	}

	items := make([]domain.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Link == "" {
			continue
		}

		source := "Google News"
		if entry.Author != nil && entry.Author.Name != "" {
			source = entry.Author.Name
		}

		items = append(items, domain.Item{
			Title:       entry.Title,
			Link:        entry.Link,
			Snippet:     provider.StripTags(entry.Description),
			Source:      source,
			PublishedAt: entry.PublishedParsed,
		})
	}

	return items, nil
}
