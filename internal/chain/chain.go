package chain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexahq/nexa-server/internal/aggregate"
	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/metrics"
	"github.com/nexahq/nexa-server/internal/provider"
)

const DefaultAttemptTimeout = 8 * time.Second

type Config struct {
	// AttemptTimeout ограничивает один вызов провайдера; истечение
	// равносильно ошибке - переходим к следующему
	AttemptTimeout time.Duration
}

// Chain перебирает провайдеров в порядке приоритета: платные со
// структурированным API раньше бесплатных, scraping - последним.
type Chain struct {
	providers []provider.Provider
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Outcome - результат одного прогона цепочки.
// Исчерпание не ошибка: Items пуст, Note объясняет почему.
type Outcome struct {
	Items []domain.Item
	// Provider - имя провайдера, давшего результат ("" если никто)
	Provider string
	Notes    []string
}

func (o *Outcome) Exhausted() bool { return o.Provider == "" }

func (o *Outcome) note(format string, args ...interface{}) {
	o.Notes = append(o.Notes, fmt.Sprintf(format, args...))
}

func New(cfg Config, providers []provider.Provider, logger *zap.Logger, m *metrics.Metrics) *Chain {
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}

	return &Chain{
		providers: providers,
		timeout:   cfg.AttemptTimeout,
		logger:    logger,
		metrics:   m,
	}
}

// Run пробует провайдеров по очереди до первого непустого результата.
// Пустая выдача и ошибка для вызывающего неразличимы - оба случая
// означают "пробуем следующего", различие остается в Notes.
func (c *Chain) Run(ctx context.Context, query string, limit int) *Outcome {
	out := &Outcome{}

	for _, p := range c.providers {
		if ctx.Err() != nil {
			out.note("request canceled before %s", p.Name())
			return out
		}

		if !p.Available() {
			out.note("%s: not configured, skipped", p.Name())
			continue
		}

		items, err := c.attempt(ctx, p, query, limit)
		if err != nil {
			out.note("%s: %v", p.Name(), err)
			c.logger.Warn("provider attempt failed",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}

		if len(items) == 0 {
			out.note("%s: no results", p.Name())
			continue
		}

		// в first-match режиме только дедуп: фильтр релевантности
		// применяется при слиянии нескольких источников, одиночную
		// выдачу провайдера не урезаем
		out.Items = aggregate.Dedup(items)
		out.Provider = p.Name()
		return out
	}

	out.note("all providers exhausted")
	return out
}

// Collect - multi-source режим: все доступные провайдеры опрашиваются
// параллельно, выдачи сливаются через дедуп и ранжирование. Падение
// части провайдеров не мешает остальным.
func (c *Chain) Collect(ctx context.Context, query string, limit int) *Outcome {
	out := &Outcome{}

	active := make([]provider.Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if !p.Available() {
			out.note("%s: not configured, skipped", p.Name())
			continue
		}
		active = append(active, p)
	}

	if len(active) == 0 {
		out.note("all providers exhausted")
		return out
	}

	lists := make([][]domain.Item, len(active))
	noteCh := make(chan string, len(active))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range active {
		i, p := i, p
		g.Go(func() error {
			items, err := c.attempt(gctx, p, query, limit)
			if err != nil {
				noteCh <- fmt.Sprintf("%s: %v", p.Name(), err)
				return nil // ошибки поглощаем, fan-out не роняем
			}
			lists[i] = items
			return nil
		})
	}
	g.Wait()
	close(noteCh)

	for n := range noteCh {
		out.Notes = append(out.Notes, n)
	}

	out.Items = aggregate.Merge(lists, query, limit)
	if len(out.Items) == 0 {
		out.note("all providers exhausted")
		return out
	}

	// в merge-режиме отмечаем первого внесшего вклад провайдера
	for i, p := range active {
		if len(lists[i]) > 0 {
			out.Provider = p.Name()
			break
		}
	}

	return out
}

func (c *Chain) attempt(ctx context.Context, p provider.Provider, query string, limit int) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	items, err := p.Search(ctx, query, limit)
	if c.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		} else if len(items) == 0 {
			status = "empty"
		}
		c.metrics.RecordProviderRequest(p.Name(), status, time.Since(start))
	}

	return items, err
}
