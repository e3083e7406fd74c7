package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/enrich"
)

const (
	pageFetchTimeout = 15 * time.Second
	maxPageBytes     = 2 * 1024 * 1024
)

var (
	ogTitleRe = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	ogDescRe  = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:description["'][^>]+content=["']([^"']+)["']`)
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// PageResult - извлеченный текст страницы
type PageResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Excerpt string `json:"excerpt,omitempty"`
	Text    string `json:"text"`
}

type PageService interface {
	Preview(ctx context.Context, link string) (*domain.Item, error)
	Fetch(ctx context.Context, link string) (*PageResult, error)
}

type pageService struct {
	client *http.Client
	logger *zap.Logger
}

func NewPageService(logger *zap.Logger) PageService {
	return &pageService{
		client: &http.Client{Timeout: pageFetchTimeout},
		logger: logger,
	}
}

// Preview собирает og-карточку одной ссылки
func (s *pageService) Preview(ctx context.Context, link string) (*domain.Item, error) {
	page, parsed, err := s.fetchPage(ctx, link)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		Title:     firstMatch(page, ogTitleRe, titleRe),
		Link:      link,
		Snippet:   firstMatch(page, ogDescRe),
		Thumbnail: enrich.ExtractImage(page),
		Source:    "preview",
	}
	if item.Title == "" {
		item.Title = parsed.Host
	}

	return item, nil
}

// Fetch вытаскивает читабельный текст страницы
func (s *pageService) Fetch(ctx context.Context, link string) (*PageResult, error) {
	page, parsed, err := s.fetchPage(ctx, link)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(page), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract page text: %w", err)
	}

	result := &PageResult{
		Title:   article.Title,
		Link:    link,
		Excerpt: article.Excerpt,
		Text:    article.TextContent,
	}
	if result.Title == "" {
		result.Title = parsed.Host
	}

	return result, nil
}

func (s *pageService) fetchPage(ctx context.Context, link string) (string, *url.URL, error) {
	parsed, err := url.Parse(link)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", nil, domain.ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; nexa/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", nil, fmt.Errorf("read page: %w", err)
	}

	return string(body), parsed, nil
}

func firstMatch(page string, res ...*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(page); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
