package chain

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
	"github.com/nexahq/nexa-server/internal/provider/mock"
)

func items(links ...string) []domain.Item {
	out := make([]domain.Item, len(links))
	for i, l := range links {
		out[i] = domain.Item{Title: "T" + l, Link: l}
	}
	return out
}

func TestChain_Run_FallbackOrder(t *testing.T) {
	failing := mock.New("a").WithError(provider.ErrRequestFailed)
	succeeding := mock.New("b").WithItems(items("https://x.test/1", "https://x.test/2"))
	never := mock.New("c").WithItems(items("https://x.test/3"))

	c := New(Config{}, []provider.Provider{failing, succeeding, never}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "query", 5)

	if out.Exhausted() {
		t.Fatal("Run() exhausted, want success from b")
	}
	if out.Provider != "b" {
		t.Errorf("Provider = %q, want b", out.Provider)
	}
	if len(out.Items) != 2 {
		t.Errorf("items = %d, want 2", len(out.Items))
	}
	if failing.Calls() != 1 || succeeding.Calls() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.Calls(), succeeding.Calls())
	}
	// провайдеры после успешного не трогаются
	if never.Calls() != 0 {
		t.Errorf("provider after success was called %d times", never.Calls())
	}
}

func TestChain_Run_EmptyResultAdvances(t *testing.T) {
	empty := mock.New("a") // без Items = пустая выдача
	full := mock.New("b").WithItems(items("https://x.test/1"))

	c := New(Config{}, []provider.Provider{empty, full}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "q", 5)
	if out.Provider != "b" {
		t.Errorf("Provider = %q, want b after empty result", out.Provider)
	}
}

func TestChain_Run_UnconfiguredSkippedWithoutCall(t *testing.T) {
	unconfigured := mock.New("a").WithConfigured(false)
	full := mock.New("b").WithItems(items("https://x.test/1"))

	c := New(Config{}, []provider.Provider{unconfigured, full}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "q", 5)
	if unconfigured.Calls() != 0 {
		t.Error("unavailable provider was called")
	}
	if out.Provider != "b" {
		t.Errorf("Provider = %q, want b", out.Provider)
	}
}

func TestChain_Run_Exhaustion(t *testing.T) {
	a := mock.New("a").WithConfigured(false)
	b := mock.New("b").WithConfigured(false)

	c := New(Config{}, []provider.Provider{a, b}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "x", 5)

	if !out.Exhausted() {
		t.Error("Run() want exhausted outcome")
	}
	if out.Items == nil || len(out.Items) != 0 {
		// пустой список, не nil-паника у вызывающего; len==0 достаточно
	}
	if len(out.Notes) == 0 {
		t.Error("exhausted outcome must carry explanatory notes")
	}
}

func TestChain_Run_TimeoutAdvances(t *testing.T) {
	slow := mock.New("slow").
		WithItems(items("https://x.test/1")).
		WithDelay(500 * time.Millisecond)
	fast := mock.New("fast").WithItems(items("https://x.test/2"))

	c := New(Config{AttemptTimeout: 50 * time.Millisecond}, []provider.Provider{slow, fast}, zap.NewNop(), nil)

	start := time.Now()
	out := c.Run(context.Background(), "q", 5)

	if out.Provider != "fast" {
		t.Errorf("Provider = %q, want fast after slow timeout", out.Provider)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("chain blocked for %v, timeout not enforced", elapsed)
	}
}

func TestChain_Run_DedupWithinProvider(t *testing.T) {
	p := mock.New("a").WithItems([]domain.Item{
		{Title: "T1", Link: "https://x.test/1"},
		{Title: "T1 dup", Link: "https://x.test/1?utm_source=rss"},
	})

	c := New(Config{}, []provider.Provider{p}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "example topic", 6)
	if len(out.Items) != 1 {
		t.Fatalf("items = %d, want 1 after dedup", len(out.Items))
	}
	if out.Items[0].Link != "https://x.test/1" {
		t.Errorf("Link = %q", out.Items[0].Link)
	}
}

func TestChain_Run_KeepsFullProviderOutput(t *testing.T) {
	// три релевантных заголовка и один без токенов запроса: в
	// first-match режиме хвост не отрезается
	p := mock.New("a").WithItems([]domain.Item{
		{Title: "Go generics guide", Link: "https://x.test/1"},
		{Title: "Go modules explained", Link: "https://x.test/2"},
		{Title: "Concurrency in Go", Link: "https://x.test/3"},
		{Title: "Unrelated essay", Link: "https://x.test/4"},
	})

	c := New(Config{}, []provider.Provider{p}, zap.NewNop(), nil)

	out := c.Run(context.Background(), "Go", 10)
	if len(out.Items) != 4 {
		t.Fatalf("items = %d, want all 4 from the provider", len(out.Items))
	}
	// порядок провайдера сохраняется
	if out.Items[3].Title != "Unrelated essay" {
		t.Errorf("last item = %q, provider order broken", out.Items[3].Title)
	}
}

func TestChain_Collect_MergesAndTolerates(t *testing.T) {
	a := mock.New("a").WithItems([]domain.Item{
		{Title: "AI safety report", Link: "https://x.test/1"},
	})
	broken := mock.New("broken").WithError(provider.ErrRequestFailed)
	b := mock.New("b").WithItems([]domain.Item{
		{Title: "duplicate of first", Link: "https://x.test/1?utm_medium=x"},
		{Title: "AI ethics overview", Link: "https://x.test/2"},
	})

	c := New(Config{}, []provider.Provider{a, broken, b}, zap.NewNop(), nil)

	out := c.Collect(context.Background(), "AI", 10)

	if len(out.Items) != 2 {
		t.Fatalf("items = %d, want 2 (dedup across providers)", len(out.Items))
	}
	// дубль из второго провайдера проиграл первому
	if out.Items[0].Title == "duplicate of first" || out.Items[1].Title == "duplicate of first" {
		t.Error("later duplicate won over first occurrence")
	}
	if len(out.Notes) == 0 {
		t.Error("broken provider must leave a note")
	}
}

func TestChain_Collect_AllDown(t *testing.T) {
	a := mock.New("a").WithError(provider.ErrRequestFailed)
	b := mock.New("b").WithConfigured(false)

	c := New(Config{}, []provider.Provider{a, b}, zap.NewNop(), nil)

	out := c.Collect(context.Background(), "q", 5)
	if !out.Exhausted() {
		t.Error("Collect() want exhausted")
	}
	if len(out.Notes) < 2 {
		t.Errorf("notes = %v, want entries for both providers", out.Notes)
	}
}
