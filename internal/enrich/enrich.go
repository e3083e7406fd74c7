package enrich

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/metrics"
)

const (
	// DefaultMaxItems - мягкий потолок на число обогащаемых элементов;
	// хвост просто остается без превью, это не ошибка
	DefaultMaxItems = 6

	DefaultTimeout = 5 * time.Second

	// maxBodyBytes: og-теги живут в <head>, весь документ не нужен
	maxBodyBytes = 512 * 1024
)

var (
	ogImageRe      = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`)
	twitterImageRe = regexp.MustCompile(`(?i)<meta[^>]+name=["']twitter:image["'][^>]+content=["']([^"']+)["']`)
)

type Config struct {
	MaxItems int
	Timeout  time.Duration
	// ProxyBase - reader-прокси вида https://r.jina.ai для площадок,
	// отдающих ботам заглушки (instagram, twitter). Пусто = прямой фетч.
	ProxyBase string
	// Placeholder подставляется когда превью вытащить не удалось
	Placeholder string
}

// Enricher best-effort дотягивает thumbnail из og:image страницы самого
// результата. Любой сбой под-задачи не влияет ни на соседей, ни на
// итоговый ответ.
type Enricher struct {
	maxItems    int
	timeout     time.Duration
	proxyBase   string
	placeholder string
	client      *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Enricher {
	if cfg.MaxItems == 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Enricher{
		maxItems:    cfg.MaxItems,
		timeout:     cfg.Timeout,
		proxyBase:   strings.TrimSuffix(cfg.ProxyBase, "/"),
		placeholder: cfg.Placeholder,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		metrics:     m,
	}
}

// Fill обогащает первые maxItems элементов без превью. Все под-задачи
// стартуют одновременно и дожидаются завершения каждая своей судьбой
// (all-settle); порядок элементов не меняется.
func (e *Enricher) Fill(ctx context.Context, items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)

	var wg sync.WaitGroup
	launched := 0

	for i := range out {
		if launched >= e.maxItems {
			break
		}
		if out[i].Thumbnail != "" {
			continue
		}
		launched++

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			thumb, err := e.fetchThumbnail(ctx, out[idx].Link)
			if err != nil {
				if e.metrics != nil {
					e.metrics.RecordEnrichment("error")
				}
				e.logger.Debug("enrichment failed",
					zap.String("link", out[idx].Link),
					zap.Error(err),
				)
				if e.placeholder != "" {
					out[idx].Thumbnail = e.placeholder
				}
				return
			}
			if thumb == "" {
				if e.metrics != nil {
					e.metrics.RecordEnrichment("miss")
				}
				if e.placeholder != "" {
					out[idx].Thumbnail = e.placeholder
				}
				return
			}
			if e.metrics != nil {
				e.metrics.RecordEnrichment("success")
			}
			out[idx].Thumbnail = thumb
		}(i)
	}

	wg.Wait()
	return out
}

func (e *Enricher) fetchThumbnail(ctx context.Context, link string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	target := link
	if e.proxyBase != "" {
		target = e.proxyBase + "/http/" + strings.TrimPrefix(strings.TrimPrefix(link, "https://"), "http://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return ExtractImage(string(body)), nil
}

// ExtractImage ищет og:image, затем twitter:image; возвращает только
// URL-образные значения
func ExtractImage(page string) string {
	for _, re := range []*regexp.Regexp{ogImageRe, twitterImageRe} {
		if m := re.FindStringSubmatch(page); m != nil {
			candidate := strings.TrimSpace(m[1])
			if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
				return candidate
			}
		}
	}
	return ""
}
