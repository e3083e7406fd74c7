package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/llm"
	llmmock "github.com/nexahq/nexa-server/internal/llm/mock"
	providermock "github.com/nexahq/nexa-server/internal/provider/mock"
)

func TestSummarizeService_FactCheck_WithContext(t *testing.T) {
	client := llmmock.New().WithResponse("TRUE. Confirmed by the release notes [#1].")

	svc := NewSummarizeService(SummarizeDeps{
		Clients: []llm.Client{client},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.FactCheck(context.Background(), domain.FactCheckQuery{
		Claim: "Go has generics since 1.18",
		Context: []domain.Item{
			{Title: "Go 1.18 release notes", Link: "https://go.dev/doc/go1.18", Snippet: "Generics arrive."},
		},
	})
	if err != nil {
		t.Fatalf("FactCheck() error = %v", err)
	}

	if !strings.HasPrefix(resp.Verdict, "TRUE") {
		t.Errorf("Verdict = %q", resp.Verdict)
	}
	if len(resp.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(resp.Sources))
	}
	if !strings.Contains(client.LastPrompt, "Go has generics since 1.18") {
		t.Errorf("prompt lacks claim: %q", client.LastPrompt)
	}
	if !strings.Contains(client.LastPrompt, "[#1] Go 1.18 release notes") {
		t.Errorf("prompt lacks numbered source: %q", client.LastPrompt)
	}
}

func TestSummarizeService_FactCheck_SearchesWhenNoContext(t *testing.T) {
	p := providermock.New("primary").WithItems(items("https://a.test/1"))
	client := llmmock.New().WithResponse("UNSURE. Single source [#1].")

	svc := NewSummarizeService(SummarizeDeps{
		Search:  NewSearchService(SearchDeps{Web: newChain(p), Logger: zap.NewNop()}),
		Clients: []llm.Client{client},
		Logger:  zap.NewNop(),
	})

	// claim не передан - берется из query
	resp, err := svc.FactCheck(context.Background(), domain.FactCheckQuery{Query: "go generics"})
	if err != nil {
		t.Fatalf("FactCheck() error = %v", err)
	}

	if p.Calls() != 1 {
		t.Errorf("search calls = %d, want 1", p.Calls())
	}
	if len(resp.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(resp.Sources))
	}
	if !strings.Contains(client.LastPrompt, "Claim: go generics") {
		t.Errorf("prompt lacks claim fallback: %q", client.LastPrompt)
	}
}

func TestSummarizeService_FactCheck_MissingInput(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Clients: []llm.Client{llmmock.New()},
		Logger:  zap.NewNop(),
	})

	_, err := svc.FactCheck(context.Background(), domain.FactCheckQuery{})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("FactCheck() error = %v, want ErrEmptyQuery", err)
	}
}

func TestSummarizeService_FactCheck_NoSources(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(nil),
		Clients: []llm.Client{llmmock.New()},
		Logger:  zap.NewNop(),
	})

	_, err := svc.FactCheck(context.Background(), domain.FactCheckQuery{Query: "nothing indexed"})
	if !errors.Is(err, domain.ErrNoSources) {
		t.Errorf("FactCheck() error = %v, want ErrNoSources", err)
	}
}

func TestSummarizeService_FactCheck_NoLLM(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Clients: []llm.Client{llmmock.New().WithConfigured(false)},
		Logger:  zap.NewNop(),
	})

	_, err := svc.FactCheck(context.Background(), domain.FactCheckQuery{
		Claim:   "water is wet",
		Context: []domain.Item{{Title: "Water", Link: "https://a.test/water"}},
	})
	// без модели вердикта нет, экстрактивной замены тоже
	if !errors.Is(err, domain.ErrNoSummarizer) {
		t.Errorf("FactCheck() error = %v, want ErrNoSummarizer", err)
	}
}

func TestSummarizeService_Respond(t *testing.T) {
	client := llmmock.New().WithResponse("Great question! Go ships generics [#1]. What would you build with them?")

	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(items("https://a.test/1", "https://a.test/2")),
		Clients: []llm.Client{client},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Respond(context.Background(), "does go have generics", 0)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	if !strings.Contains(resp.Answer, "[#1]") {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("Sources = %d, want 2", len(resp.Sources))
	}
	if !strings.Contains(client.LastPrompt, "does go have generics") {
		t.Errorf("prompt lacks question: %q", client.LastPrompt)
	}
	if !strings.Contains(client.LastPrompt, "[#2]") {
		t.Errorf("prompt lacks numbered results: %q", client.LastPrompt)
	}
}

func TestSummarizeService_Respond_LimitCapped(t *testing.T) {
	p := providermock.New("primary").WithItems(items("https://a.test/1"))

	svc := NewSummarizeService(SummarizeDeps{
		Search:  NewSearchService(SearchDeps{Web: newChain(p), Logger: zap.NewNop()}),
		Clients: []llm.Client{llmmock.New().WithResponse("ok")},
		Logger:  zap.NewNop(),
	})

	if _, err := svc.Respond(context.Background(), "go", 50); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if p.LastLimit != 10 {
		t.Errorf("LastLimit = %d, want capped at 10", p.LastLimit)
	}
}

func TestSummarizeService_Respond_ExtractiveFallback(t *testing.T) {
	broken := llmmock.New().WithName("broken").WithError(errors.New("down"))

	src := []domain.Item{
		{Title: "Go 1.24", Link: "https://go.dev/blog", Snippet: "Release notes for Go 1.24."},
	}

	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(src),
		Clients: []llm.Client{broken},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Respond(context.Background(), "go release", 0)
	if err != nil {
		t.Fatalf("Respond() error = %v, degraded answer must not be an error", err)
	}

	if !strings.Contains(resp.Answer, "[#1 - go.dev]") {
		t.Errorf("Answer = %q, want stitched snippet with citation", resp.Answer)
	}
	if !strings.Contains(resp.Note, "extractive_fallback") {
		t.Errorf("Note = %q", resp.Note)
	}
}

func TestSummarizeService_Respond_EmptyQuestion(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(nil),
		Clients: []llm.Client{llmmock.New()},
		Logger:  zap.NewNop(),
	})

	if _, err := svc.Respond(context.Background(), "  ", 0); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("Respond() error = %v, want ErrEmptyQuery", err)
	}
}
