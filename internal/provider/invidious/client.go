package invidious

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 20

var defaultInstances = []string{
	"https://yewtu.be",
	"https://inv.nadeko.net",
	"https://invidious.projectsegfau.lt",
}

type Config struct {
	// Instances - публичные Invidious/Piped зеркала; перебираются по
	// порядку, пока одно не ответит валидным JSON
	Instances []string
	Timeout   time.Duration
}

type Client struct {
	instances []string
	client    *http.Client
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if len(cfg.Instances) == 0 {
		cfg.Instances = defaultInstances
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 8 * time.Second
	}

	return &Client{
		instances: cfg.Instances,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

func (c *Client) Name() string { return "invidious" }

func (c *Client) Available() bool { return true }

type video struct {
	Title      string `json:"title"`
	VideoID    string `json:"videoId"`
	Author     string `json:"author"`
	Published  int64  `json:"published"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"videoThumbnails"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)
	path := "/api/v1/search?type=video&q=" + url.QueryEscape(query)
	return c.fetch(ctx, path, limit)
}

// Trending - последний рубеж videos-ручки: показать хоть что-то
func (c *Client) Trending(ctx context.Context, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)
	return c.fetch(ctx, "/api/v1/trending", limit)
}

func (c *Client) fetch(ctx context.Context, path string, limit int) ([]domain.Item, error) {
	var lastErr error
	for _, base := range c.instances {
		items, err := c.fetchInstance(ctx, base, path, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger.Debug("invidious instance failed",
				zap.String("instance", base),
				zap.Error(err),
			)
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func (c *Client) fetchInstance(ctx context.Context, base, path string, limit int) ([]domain.Item, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", provider.UserAgent)

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	var videos []video
	if err := json.Unmarshal(respBody, &videos); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(videos))
	for _, v := range videos {
		if len(items) >= limit {
			break
		}
		if v.VideoID == "" || v.Title == "" {
			continue
		}

		thumb := ""
		if len(v.Thumbnails) > 0 {
			thumb = v.Thumbnails[0].URL
		}
		if thumb == "" || !strings.HasPrefix(thumb, "http") {
			thumb = "https://i.ytimg.com/vi/" + v.VideoID + "/hqdefault.jpg"
		}

		source := v.Author
		if source == "" {
			source = "YouTube"
		}

		var published *time.Time
		if v.Published > 0 {
			t := time.Unix(v.Published, 0).UTC()
			published = &t
		}

		items = append(items, domain.Item{
			Title:       v.Title,
			Link:        "https://www.youtube.com/watch?v=" + v.VideoID,
			Thumbnail:   thumb,
			Source:      source,
			PublishedAt: published,
		})
	}

	return items, nil
}

var videoIDRe = regexp.MustCompile(`(?:v=|youtu\.be/)([^?&/]+)`)

// ExtractVideoID достает ID из youtube-ссылки (для восстановления превью)
func ExtractVideoID(link string) string {
	m := videoIDRe.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}
