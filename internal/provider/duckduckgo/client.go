package duckduckgo

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 18

// resultLinkRe цепляется за класс result__a - единственный стабильный
// маркер в выдаче html.duckduckgo.com. Дрейф верстки не считается ошибкой:
// ноль совпадений = пустой успешный результат.
var resultLinkRe = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)

type Config struct {
	BaseURL string
	// Site ограничивает выдачу одним доменом (site:twitter.com и т.п.)
	Site    string
	Timeout time.Duration
}

// Client - scraping-адаптер деградированного качества: официального API
// нет, парсим HTML-выдачу. Изолирован за общим интерфейсом, чтобы его
// можно было отключить не трогая вызывающий код.
type Client struct {
	baseURL string
	site    string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://duckduckgo.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		site:    cfg.Site,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string {
	if c.site != "" {
		return "duckduckgo:" + c.site
	}
	return "duckduckgo"
}

func (c *Client) Available() bool { return true }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	q := query
	if c.site != "" {
		q = query + " site:" + c.site
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/html/?q="+url.QueryEscape(q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", provider.UserAgent)
	httpReq.Header.Set("Accept", "text/html")

	respBody, statusCode, err := provider.DoRequest(c.client, httpReq)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK {
		return nil, provider.StatusError(statusCode)
	}

	return c.parse(string(respBody), limit), nil
}

func (c *Client) parse(page string, limit int) []domain.Item {
	matches := resultLinkRe.FindAllStringSubmatch(page, -1)

	items := make([]domain.Item, 0, limit)
	for _, m := range matches {
		if len(items) >= limit {
			break
		}

		link := html.UnescapeString(m[1])
		link = unwrapRedirect(link)
		if c.site != "" && !strings.Contains(link, c.site) {
			continue
		}

		title := provider.StripTags(html.UnescapeString(m[2]))
		if title == "" {
			title = link
		}

		items = append(items, domain.Item{
			Title:  title,
			Link:   link,
			Source: "duckduckgo",
		})
	}

	return items
}

// unwrapRedirect разворачивает ddg-овские /l/?uddg=... редиректы
func unwrapRedirect(link string) string {
	if !strings.Contains(link, "uddg=") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}
