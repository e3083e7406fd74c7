package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/llm"
	"github.com/nexahq/nexa-server/internal/metrics"
)

const (
	summarizeSystemPrompt = `You are a research assistant. Summarize the provided search results into a concise digest.

Rules:
1. Use ONLY information from the provided sources
2. Reference sources inline as [#1], [#2], etc.
3. 3-5 short paragraphs maximum
4. If sources disagree, say so`

	outlineSystemPrompt = `You are a content strategist. Produce a structured outline for the given topic.

Rules:
1. Ground every section in the provided facts
2. Use short headline-style bullet points
3. Match the requested style`

	// maxContextSources ограничивает промпт: дальше сниппеты уже не
	// влияют на качество, только жгут токены
	maxContextSources = 8
)

type SummarizeService interface {
	Summarize(ctx context.Context, q domain.SearchQuery) (*domain.SummarizeResponse, error)
	Outline(ctx context.Context, topic string, facts []string, style string) (string, error)
	FactCheck(ctx context.Context, q domain.FactCheckQuery) (*domain.FactCheckResponse, error)
	Respond(ctx context.Context, question string, limit int) (*domain.CohostResponse, error)
}

type SummarizeDeps struct {
	Search SearchService
	// Clients пробуются по порядку; все отказали - экстрактивная
	// склейка сниппетов
	Clients []llm.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type summarizeService struct {
	search  SearchService
	clients []llm.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewSummarizeService(deps SummarizeDeps) SummarizeService {
	return &summarizeService{
		search:  deps.Search,
		clients: deps.Clients,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

func (s *summarizeService) Summarize(ctx context.Context, q domain.SearchQuery) (*domain.SummarizeResponse, error) {
	searchResp, err := s.search.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(searchResp.Items) == 0 {
		return &domain.SummarizeResponse{
			Summary: "",
			Sources: []domain.Item{},
			Note:    searchResp.Note,
		}, nil
	}

	prompt := buildSummaryPrompt(q.Text, searchResp.Items)

	summary, clientName, llmErr := s.complete(ctx, summarizeSystemPrompt, prompt)
	if llmErr != nil {
		// деградация, не ошибка: склеиваем сниппеты с цитатами
		s.logger.Warn("all llm clients failed, using extractive summary",
			zap.Error(llmErr),
		)
		return &domain.SummarizeResponse{
			Summary: extractiveSummary(searchResp.Items),
			Sources: searchResp.Items,
			Note:    joinNotes(searchResp.Note, "extractive_fallback"),
		}, nil
	}

	s.logger.Info("summary generated",
		zap.String("llm", clientName),
		zap.Int("sources", len(searchResp.Items)),
	)

	return &domain.SummarizeResponse{
		Summary: summary,
		Sources: searchResp.Items,
		Note:    searchResp.Note,
	}, nil
}

func (s *summarizeService) Outline(ctx context.Context, topic string, facts []string, style string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", domain.ErrEmptyQuery
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if style != "" {
		fmt.Fprintf(&b, "Style: %s\n", style)
	}
	if len(facts) > 0 {
		b.WriteString("Facts:\n")
		for _, f := range facts {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	outline, _, err := s.complete(ctx, outlineSystemPrompt, b.String())
	if err != nil {
		// без LLM остается механический каркас из фактов
		return fallbackOutline(topic, facts), nil
	}
	return outline, nil
}

// complete перебирает клиентов до первого успеха
func (s *summarizeService) complete(ctx context.Context, system, prompt string) (string, string, error) {
	var lastErr error = llm.ErrNotConfigured

	for _, c := range s.clients {
		if !c.Available() {
			continue
		}

		start := time.Now()
		result, err := c.CompleteWithSystem(ctx, system, prompt)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordLLMRequest(c.Name(), "error", time.Since(start))
			}
			s.logger.Warn("llm client failed, trying next",
				zap.String("llm", c.Name()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		if s.metrics != nil {
			s.metrics.RecordLLMRequest(c.Name(), "success", time.Since(start))
		}
		return result, c.Name(), nil
	}

	return "", "", lastErr
}

func buildSummaryPrompt(query string, items []domain.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSources:\n", query)

	for i, it := range items {
		if i >= maxContextSources {
			break
		}
		fmt.Fprintf(&b, "[#%d] %s (%s)\n%s\n\n", i+1, it.Title, it.Host(), it.Snippet)
	}

	return b.String()
}

// extractiveSummary - последний рубеж: первые сниппеты с номерными
// ссылками, без генерации
func extractiveSummary(items []domain.Item) string {
	var parts []string
	for i, it := range items {
		if i >= maxContextSources {
			break
		}
		snippet := strings.TrimSpace(it.Snippet)
		if snippet == "" {
			snippet = it.Title
		}
		parts = append(parts, fmt.Sprintf("%s [#%d - %s]", snippet, i+1, it.Host()))
	}
	return strings.Join(parts, " ")
}

func fallbackOutline(topic string, facts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", topic)
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return b.String()
}

func joinNotes(notes ...string) string {
	var nonEmpty []string
	for _, n := range notes {
		if n != "" {
			nonEmpty = append(nonEmpty, n)
		}
	}
	return strings.Join(nonEmpty, "; ")
}
