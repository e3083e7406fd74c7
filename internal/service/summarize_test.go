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

func newSearchForSummarize(items []domain.Item) SearchService {
	p := providermock.New("primary").WithItems(items)
	return NewSearchService(SearchDeps{
		Web:    newChain(p),
		Logger: zap.NewNop(),
	})
}

func TestSummarizeService_Summarize(t *testing.T) {
	first := llmmock.New().WithName("first").WithResponse("Summary [#1].")
	second := llmmock.New().WithName("second")

	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(items("https://a.test/1", "https://a.test/2")),
		Clients: []llm.Client{first, second},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Summarize(context.Background(), domain.SearchQuery{Text: "golang generics"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if resp.Summary != "Summary [#1]." {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("Sources = %d, want 2", len(resp.Sources))
	}
	if second.CallCount != 0 {
		t.Errorf("second client called %d times after first succeeded", second.CallCount)
	}

	// источники пронумерованы в промпте
	if !strings.Contains(first.LastPrompt, "[#1]") || !strings.Contains(first.LastPrompt, "[#2]") {
		t.Errorf("prompt lacks numbered sources: %q", first.LastPrompt)
	}
}

func TestSummarizeService_Summarize_ClientFallback(t *testing.T) {
	first := llmmock.New().WithName("first").WithError(errors.New("overloaded"))
	second := llmmock.New().WithName("second").WithResponse("Backup summary.")

	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(items("https://a.test/1")),
		Clients: []llm.Client{first, second},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Summarize(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if resp.Summary != "Backup summary." {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if first.CallCount != 1 || second.CallCount != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.CallCount, second.CallCount)
	}
}

func TestSummarizeService_Summarize_ExtractiveFallback(t *testing.T) {
	broken := llmmock.New().WithName("broken").WithError(errors.New("down"))
	unconfigured := llmmock.New().WithName("off").WithConfigured(false)

	src := []domain.Item{
		{Title: "Go 1.24", Link: "https://go.dev/blog", Snippet: "Release notes for Go 1.24."},
	}

	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(src),
		Clients: []llm.Client{unconfigured, broken},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Summarize(context.Background(), domain.SearchQuery{Text: "go release"})
	if err != nil {
		t.Fatalf("Summarize() error = %v, degraded summary must not be an error", err)
	}

	if !strings.Contains(resp.Summary, "Release notes for Go 1.24.") {
		t.Errorf("Summary = %q, want stitched snippet", resp.Summary)
	}
	if !strings.Contains(resp.Summary, "[#1 - go.dev]") {
		t.Errorf("Summary = %q, want [#1 - go.dev] citation", resp.Summary)
	}
	if !strings.Contains(resp.Note, "extractive_fallback") {
		t.Errorf("Note = %q", resp.Note)
	}
	if unconfigured.CallCount != 0 {
		t.Error("unconfigured client was called")
	}
}

func TestSummarizeService_Summarize_NoResults(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Search:  newSearchForSummarize(nil),
		Clients: []llm.Client{llmmock.New()},
		Logger:  zap.NewNop(),
	})

	resp, err := svc.Summarize(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if resp.Summary != "" || len(resp.Sources) != 0 {
		t.Errorf("resp = %+v, want empty summary and sources", resp)
	}
	if resp.Note == "" {
		t.Error("Note empty when search returned nothing")
	}
}

func TestSummarizeService_Outline(t *testing.T) {
	client := llmmock.New().WithResponse("1. Intro\n2. Body")

	svc := NewSummarizeService(SummarizeDeps{
		Clients: []llm.Client{client},
		Logger:  zap.NewNop(),
	})

	got, err := svc.Outline(context.Background(), "go concurrency", []string{"goroutines are cheap"}, "listicle")
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}
	if got != "1. Intro\n2. Body" {
		t.Errorf("Outline() = %q", got)
	}
	if !strings.Contains(client.LastPrompt, "goroutines are cheap") {
		t.Errorf("prompt lacks facts: %q", client.LastPrompt)
	}

	if _, err := svc.Outline(context.Background(), "  ", nil, ""); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("Outline() error = %v, want ErrEmptyQuery", err)
	}
}

func TestSummarizeService_Outline_Fallback(t *testing.T) {
	svc := NewSummarizeService(SummarizeDeps{
		Clients: []llm.Client{llmmock.New().WithConfigured(false)},
		Logger:  zap.NewNop(),
	})

	got, err := svc.Outline(context.Background(), "go concurrency", []string{"channels", "select"}, "")
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}
	if !strings.Contains(got, "# go concurrency") || !strings.Contains(got, "- channels") {
		t.Errorf("Outline() fallback = %q", got)
	}
}
