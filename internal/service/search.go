package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/cache"
	"github.com/nexahq/nexa-server/internal/chain"
	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/metrics"
)

// Runner - одна цепочка провайдеров. Run - до первого непустого,
// Collect - параллельный сбор со слиянием.
type Runner interface {
	Run(ctx context.Context, query string, limit int) *chain.Outcome
	Collect(ctx context.Context, query string, limit int) *chain.Outcome
}

// Thumbnailer best-effort дотягивает превью; порядок и длина среза
// не меняются
type Thumbnailer interface {
	Fill(ctx context.Context, items []domain.Item) []domain.Item
}

type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
	News(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
	Reddit(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
	Social(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
}

type SearchConfig struct {
	CacheTTL time.Duration
	// Total ограничивает весь запрос поверх пер-провайдерных таймаутов;
	// 0 = без общего дедлайна
	Total time.Duration
}

type SearchDeps struct {
	// Web - платные провайдеры, первый непустой побеждает.
	// Free опрашивается merge-режимом когда Web исчерпан.
	Web  Runner
	Free Runner

	News   Runner
	Reddit Runner
	Social Runner

	Enricher Thumbnailer
	Cache    cache.Cache
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Config   SearchConfig
}

type searchService struct {
	web      Runner
	free     Runner
	news     Runner
	reddit   Runner
	social   Runner
	enricher Thumbnailer
	cache    cache.Cache
	logger   *zap.Logger
	metrics  *metrics.Metrics
	config   SearchConfig
}

func NewSearchService(deps SearchDeps) SearchService {
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = 5 * time.Minute
	}

	return &searchService{
		web:      deps.Web,
		free:     deps.Free,
		news:     deps.News,
		reddit:   deps.Reddit,
		social:   deps.Social,
		enricher: deps.Enricher,
		cache:    deps.Cache,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		config:   deps.Config,
	}
}

// Search - основная веб-выдача: платная цепочка, при исчерпании -
// слияние бесплатных источников
func (s *searchService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	return s.run(ctx, "web", q, func(ctx context.Context, q domain.SearchQuery) (*chain.Outcome, bool) {
		out := s.web.Run(ctx, q.Text, q.Limit)
		if !out.Exhausted() || s.free == nil {
			return out, false
		}

		s.logger.Info("web chain exhausted, merging free sources",
			zap.String("query", q.Text),
		)
		free := s.free.Collect(ctx, q.Text, q.Limit)
		free.Notes = append(out.Notes, free.Notes...)
		// переход на резервные источники виден клиенту через note
		return free, true
	}, false)
}

func (s *searchService) News(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	return s.run(ctx, "news", q, func(ctx context.Context, q domain.SearchQuery) (*chain.Outcome, bool) {
		return s.news.Collect(ctx, q.Text, q.Limit), false
	}, false)
}

func (s *searchService) Reddit(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	return s.run(ctx, "reddit", q, func(ctx context.Context, q domain.SearchQuery) (*chain.Outcome, bool) {
		return s.reddit.Run(ctx, q.Text, q.Limit), false
	}, true)
}

func (s *searchService) Social(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	return s.run(ctx, "social", q, func(ctx context.Context, q domain.SearchQuery) (*chain.Outcome, bool) {
		return s.social.Collect(ctx, q.Text, q.Limit), false
	}, true)
}

func (s *searchService) run(
	ctx context.Context,
	surface string,
	q domain.SearchQuery,
	fetch func(context.Context, domain.SearchQuery) (*chain.Outcome, bool),
	enrichItems bool,
) (*domain.SearchResponse, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	if err := q.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRequest(surface, "validation_error", time.Since(startTime))
		}
		return nil, err
	}
	q.Sanitize()

	if s.config.Total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Total)
		defer cancel()
	}

	key := s.cacheKey(surface, q)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if resp, ok := cached.(*domain.SearchResponse); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
					s.metrics.RecordRequest(surface, "success", time.Since(startTime))
				}
				return resp, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	out, degraded := fetch(ctx, q)

	items := out.Items
	if enrichItems && s.enricher != nil && len(items) > 0 {
		items = s.enricher.Fill(ctx, items)
	}

	resp := &domain.SearchResponse{
		Items: items,
		Note:  buildNote(out, degraded),
	}
	if resp.Items == nil {
		resp.Items = []domain.Item{}
	}

	s.logger.Info("search completed",
		zap.String("surface", surface),
		zap.String("provider", out.Provider),
		zap.Int("items", len(resp.Items)),
		zap.Bool("degraded", resp.Note != ""),
	)

	// кешируем и пустые ответы: повторный промах бьет по тем же
	// исчерпанным провайдерам
	if s.cache != nil {
		s.cache.Set(key, resp, s.config.CacheTTL)
	}

	if s.metrics != nil {
		status := "success"
		if len(resp.Items) == 0 {
			status = "empty"
		}
		s.metrics.RecordRequest(surface, status, time.Since(startTime))
	}

	return resp, nil
}

// buildNote сворачивает заметки цепочки в одну строку. Промежуточные
// сбои при итоговом успехе клиенту не показываются: фолбэк внутри
// цепочки - штатная работа, note только на исчерпании или смене пути
func buildNote(out *chain.Outcome, degraded bool) string {
	if out.Exhausted() {
		return "no providers returned results: " + strings.Join(out.Notes, "; ")
	}
	if degraded {
		return strings.Join(out.Notes, "; ")
	}
	return ""
}

func (s *searchService) cacheKey(surface string, q domain.SearchQuery) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
	data := fmt.Sprintf("%s:%s:%d", surface, normalized, q.Limit)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("search:%x", hash[:8])
}
