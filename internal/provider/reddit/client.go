package reddit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
)

const maxResults = 30

type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AuthURL      string
	BaseURL      string // oauth.reddit.com при наличии кред
	PublicURL    string // www.reddit.com для keyless-режима
	Timeout      time.Duration
}

// Client предпочитает OAuth password grant (надежнее, без 403), но умеет
// ходить и в публичный JSON-эндпоинт, когда креды не заданы.
type Client struct {
	clientID  string
	secret    string
	username  string
	password  string
	authURL   string
	baseURL   string
	publicURL string
	client    *http.Client
	logger    *zap.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://oauth.reddit.com"
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "https://www.reddit.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		clientID:  cfg.ClientID,
		secret:    cfg.ClientSecret,
		username:  cfg.Username,
		password:  cfg.Password,
		authURL:   cfg.AuthURL,
		baseURL:   cfg.BaseURL,
		publicURL: cfg.PublicURL,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

func (c *Client) Name() string { return "reddit" }

// Available: публичный JSON доступен всегда, поэтому true
func (c *Client) Available() bool { return true }

func (c *Client) hasCredentials() bool {
	return c.clientID != "" && c.secret != "" && c.username != "" && c.password != ""
}

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit_name_prefixed"`
	Thumbnail  string  `json:"thumbnail"`
	CreatedUTC float64 `json:"created_utc"`
	Preview    struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Item, error) {
	limit = provider.ClampLimit(limit, maxResults)

	base := c.publicURL + "/search.json"
	var token string
	if c.hasCredentials() {
		t, err := c.getToken(ctx)
		if err != nil {
			// OAuth сломан - откатываемся на публичный эндпоинт
			c.logger.Warn("reddit oauth failed, using public endpoint", zap.Error(err))
		} else {
			token = t
			base = c.baseURL + "/search"
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "new")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", provider.UserAgent)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.StatusError(resp.StatusCode)
	}

	// reddit при блокировке отдает HTML-страницу со статусом 200
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return nil, fmt.Errorf("%w: non-JSON content type %q", provider.ErrParseFailed, ct)
	}

	var data listing
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrParseFailed, err)
	}

	items := make([]domain.Item, 0, len(data.Data.Children))
	for _, child := range data.Data.Children {
		if len(items) >= limit {
			break
		}
		p := child.Data
		if p.Permalink == "" {
			continue
		}
		var published *time.Time
		if p.CreatedUTC > 0 {
			t := time.Unix(int64(p.CreatedUTC), 0).UTC()
			published = &t
		}
		items = append(items, domain.Item{
			Title:       p.Title,
			Link:        "https://www.reddit.com" + p.Permalink,
			Thumbnail:   p.thumbnailURL(),
			Source:      p.Subreddit,
			PublishedAt: published,
		})
	}

	return items, nil
}

func (p *post) thumbnailURL() string {
	if len(p.Preview.Images) > 0 {
		// в preview URL амперсанды приходят заэскейпленными
		src := strings.ReplaceAll(p.Preview.Images[0].Source.URL, "&amp;", "&")
		if strings.HasPrefix(src, "http") {
			return src
		}
	}
	if strings.HasPrefix(p.Thumbnail, "http") {
		return p.Thumbnail
	}
	return ""
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		token := c.accessToken
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	return c.refreshToken(ctx)
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// double-check после захвата лока: другой запрос мог уже обновить
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", c.username)
	data.Set("password", c.password)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create auth request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	httpReq.Header.Set("Authorization", "Basic "+basic)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", provider.UserAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", provider.ErrUnauthorized
	}

	var authResp authResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if authResp.AccessToken == "" {
		return "", provider.ErrUnauthorized
	}

	expiresIn := authResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.accessToken = authResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)

	c.logger.Debug("reddit token refreshed",
		zap.Time("expires", c.tokenExpiry),
	)

	return c.accessToken, nil
}
