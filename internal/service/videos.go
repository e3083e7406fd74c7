package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/metrics"
)

// TrendingSource отдает трендовые ролики когда поиск ничего не нашел
type TrendingSource interface {
	Trending(ctx context.Context, limit int) ([]domain.Item, error)
}

type VideoService interface {
	Videos(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
}

type VideoDeps struct {
	Chain    Runner
	Trending TrendingSource
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type videoService struct {
	chain    Runner
	trending TrendingSource
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewVideoService(deps VideoDeps) VideoService {
	return &videoService{
		chain:    deps.Chain,
		trending: deps.Trending,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

func (s *videoService) Videos(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	if err := q.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRequest("videos", "validation_error", time.Since(startTime))
		}
		return nil, err
	}
	q.Sanitize()

	out := s.chain.Collect(ctx, q.Text, q.Limit)

	resp := &domain.SearchResponse{
		Items: out.Items,
		Note:  buildNote(out, false),
	}

	// поиск пуст - показываем trending вместо пустой страницы
	if len(resp.Items) == 0 && s.trending != nil {
		items, err := s.trending.Trending(ctx, q.Limit)
		if err != nil {
			s.logger.Warn("trending fallback failed", zap.Error(err))
		} else if len(items) > 0 {
			resp.Items = items
			resp.Note = "trending_fallback"
		}
	}

	if resp.Items == nil {
		resp.Items = []domain.Item{}
	}

	if s.metrics != nil {
		status := "success"
		if len(resp.Items) == 0 {
			status = "empty"
		}
		s.metrics.RecordRequest("videos", status, time.Since(startTime))
	}

	return resp, nil
}
