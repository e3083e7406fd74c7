package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/cache/memory"
	"github.com/nexahq/nexa-server/internal/chain"
	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/provider"
	providermock "github.com/nexahq/nexa-server/internal/provider/mock"
)

func newChain(providers ...provider.Provider) *chain.Chain {
	return chain.New(chain.Config{}, providers, zap.NewNop(), nil)
}

func items(links ...string) []domain.Item {
	out := make([]domain.Item, len(links))
	for i, l := range links {
		out[i] = domain.Item{Title: "t" + l, Link: l}
	}
	return out
}

func TestSearchService_Search(t *testing.T) {
	primary := providermock.New("primary").WithItems(items("https://a.test/1"))
	free := providermock.New("free").WithItems(items("https://b.test/1"))

	svc := NewSearchService(SearchDeps{
		Web:    newChain(primary),
		Free:   newChain(free),
		Logger: zap.NewNop(),
	})

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(resp.Items) != 1 || resp.Items[0].Link != "https://a.test/1" {
		t.Errorf("Items = %+v", resp.Items)
	}
	if resp.Note != "" {
		t.Errorf("Note = %q, want empty on clean success", resp.Note)
	}
	if free.Calls() != 0 {
		t.Errorf("free chain called %d times on primary success", free.Calls())
	}
}

func TestSearchService_Search_FreeFallback(t *testing.T) {
	primary := providermock.New("primary").WithError(errors.New("upstream down"))
	free := providermock.New("free").WithItems(items("https://free.test/1"))

	svc := NewSearchService(SearchDeps{
		Web:    newChain(primary),
		Free:   newChain(free),
		Logger: zap.NewNop(),
	})

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(resp.Items) != 1 || resp.Items[0].Link != "https://free.test/1" {
		t.Errorf("Items = %+v", resp.Items)
	}
	if !strings.Contains(resp.Note, "primary") {
		t.Errorf("Note = %q, want mention of failed primary", resp.Note)
	}
}

func TestSearchService_Search_AllExhausted(t *testing.T) {
	primary := providermock.New("primary").WithConfigured(false)
	free := providermock.New("free").WithError(errors.New("down"))

	svc := NewSearchService(SearchDeps{
		Web:    newChain(primary),
		Free:   newChain(free),
		Logger: zap.NewNop(),
	})

	resp, err := svc.Search(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Search() error = %v, exhaustion must not be an error", err)
	}

	if len(resp.Items) != 0 {
		t.Errorf("Items = %+v, want empty", resp.Items)
	}
	if resp.Note == "" {
		t.Error("Note empty on exhaustion")
	}
}

func TestSearchService_Search_ValidationError(t *testing.T) {
	svc := NewSearchService(SearchDeps{
		Web:    newChain(providermock.New("p")),
		Logger: zap.NewNop(),
	})

	_, err := svc.Search(context.Background(), domain.SearchQuery{Text: "   "})
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("Search() error = %v, want ErrEmptyQuery", err)
	}
}

func TestSearchService_Search_Cache(t *testing.T) {
	primary := providermock.New("primary").WithItems(items("https://a.test/1"))

	c := memory.New()
	defer c.Stop()

	svc := NewSearchService(SearchDeps{
		Web:    newChain(primary),
		Cache:  c,
		Logger: zap.NewNop(),
	})

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(context.Background(), domain.SearchQuery{Text: "golang"}); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}

	if primary.Calls() != 1 {
		t.Errorf("provider called %d times, want 1 (cached)", primary.Calls())
	}
}

type fakeEnricher struct {
	calls int
}

func (f *fakeEnricher) Fill(ctx context.Context, in []domain.Item) []domain.Item {
	f.calls++
	out := make([]domain.Item, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Thumbnail == "" {
			out[i].Thumbnail = "https://img.test/filled.jpg"
		}
	}
	return out
}

func TestSearchService_Reddit_Enriched(t *testing.T) {
	reddit := providermock.New("reddit").WithItems(items("https://reddit.test/1"))
	enricher := &fakeEnricher{}

	svc := NewSearchService(SearchDeps{
		Reddit:   newChain(reddit),
		Enricher: enricher,
		Logger:   zap.NewNop(),
	})

	resp, err := svc.Reddit(context.Background(), domain.SearchQuery{Text: "golang"})
	if err != nil {
		t.Fatalf("Reddit() error = %v", err)
	}

	if enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", enricher.calls)
	}
	if resp.Items[0].Thumbnail != "https://img.test/filled.jpg" {
		t.Errorf("Thumbnail = %q", resp.Items[0].Thumbnail)
	}
}

func TestSearchService_Search_NotEnriched(t *testing.T) {
	primary := providermock.New("primary").WithItems(items("https://a.test/1"))
	enricher := &fakeEnricher{}

	svc := NewSearchService(SearchDeps{
		Web:      newChain(primary),
		Enricher: enricher,
		Logger:   zap.NewNop(),
	})

	if _, err := svc.Search(context.Background(), domain.SearchQuery{Text: "golang"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// обогащение только для reddit/social поверхностей
	if enricher.calls != 0 {
		t.Errorf("enricher calls = %d, want 0 for web surface", enricher.calls)
	}
}
