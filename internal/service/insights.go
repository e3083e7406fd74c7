package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/llm"
)

const (
	factCheckSystemPrompt = `Return a verdict (TRUE, FALSE or UNSURE) then a short rationale with citations like [#1].`

	cohostSystemPrompt = `You are a concise, friendly podcast co-host. Cite facts precisely with [#n] where n is the source index.`

	// factCheckSourceLimit - сколько источников дотягиваем поиском,
	// когда готовый контекст не передан
	factCheckSourceLimit = 6

	cohostDefaultLimit = 6
	cohostMaxLimit     = 10
)

// FactCheck оценивает утверждение по источникам: TRUE/FALSE/UNSURE
// плюс обоснование с [#n]-цитатами. В отличие от Summarize здесь нет
// экстрактивной деградации: вердикт без модели не склеить.
func (s *summarizeService) FactCheck(ctx context.Context, q domain.FactCheckQuery) (*domain.FactCheckResponse, error) {
	claim := strings.TrimSpace(q.Claim)
	query := strings.TrimSpace(q.Query)
	if claim == "" && query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if claim == "" {
		claim = query
	}

	sources := q.Context
	if len(sources) == 0 && query != "" {
		searchResp, err := s.search.Search(ctx, domain.SearchQuery{Text: query, Limit: factCheckSourceLimit})
		if err != nil {
			return nil, err
		}
		sources = searchResp.Items
	}
	if len(sources) == 0 {
		return nil, domain.ErrNoSources
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Assess the following claim using the sources below. Answer with one of: TRUE, FALSE, or UNSURE, followed by a 1-2 sentence rationale. Cite with [#n] where n is the source index.\n\nClaim: %s\n\nSources:\n", claim)
	b.WriteString(buildSourceBlock(sources))

	verdict, clientName, err := s.complete(ctx, factCheckSystemPrompt, b.String())
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, domain.ErrNoSummarizer
		}
		return nil, err
	}

	s.logger.Info("fact-check completed",
		zap.String("llm", clientName),
		zap.Int("sources", len(sources)),
	)

	return &domain.FactCheckResponse{
		Verdict: verdict,
		Sources: sources,
	}, nil
}

// Respond - разговорный ответ со-ведущего на вопрос слушателя,
// обоснованный свежей поисковой выдачей
func (s *summarizeService) Respond(ctx context.Context, question string, limit int) (*domain.CohostResponse, error) {
	if limit <= 0 {
		limit = cohostDefaultLimit
	}
	if limit > cohostMaxLimit {
		limit = cohostMaxLimit
	}

	searchResp, err := s.search.Search(ctx, domain.SearchQuery{Text: question, Limit: limit})
	if err != nil {
		return nil, err
	}

	if len(searchResp.Items) == 0 {
		return &domain.CohostResponse{
			Answer:  "",
			Sources: []domain.Item{},
			Note:    searchResp.Note,
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The human asked: %q\n\nUse the search results below to respond conversationally in 4-7 sentences.\n- Be factual and avoid speculation.\n- Include inline citations like [#1] where the fact appears.\n- If sources disagree, briefly note it.\n- End with a short suggestion question to keep the conversation going.\n\nResults:\n", question)
	b.WriteString(buildSourceBlock(searchResp.Items))

	answer, clientName, llmErr := s.complete(ctx, cohostSystemPrompt, b.String())
	if llmErr != nil {
		// та же деградация, что у Summarize: склейка сниппетов
		s.logger.Warn("all llm clients failed, stitching cohost answer",
			zap.Error(llmErr),
		)
		return &domain.CohostResponse{
			Answer:  extractiveSummary(searchResp.Items),
			Sources: searchResp.Items,
			Note:    joinNotes(searchResp.Note, "extractive_fallback"),
		}, nil
	}

	s.logger.Info("cohost answer generated",
		zap.String("llm", clientName),
		zap.Int("sources", len(searchResp.Items)),
	)

	return &domain.CohostResponse{
		Answer:  answer,
		Sources: searchResp.Items,
		Note:    searchResp.Note,
	}, nil
}

// buildSourceBlock - нумерованный контекст для промпта: заголовок,
// сниппет, ссылка
func buildSourceBlock(items []domain.Item) string {
	var b strings.Builder
	for i, it := range items {
		if i >= maxContextSources {
			break
		}
		title := it.Title
		if title == "" {
			title = it.Link
		}
		fmt.Fprintf(&b, "[#%d] %s\n%s\n%s\n\n", i+1, title, it.Snippet, it.Link)
	}
	return b.String()
}
