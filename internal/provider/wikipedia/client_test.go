package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("srsearch"); got != "go language" {
			t.Errorf("srsearch = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":{"search":[
			{"title":"Go (programming language)","snippet":"<span class=\"searchmatch\">Go</span> is a language"},
			{"title":"Golang", "snippet":"redirect"}
		]}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, zap.NewNop())

	items, err := client.Search(context.Background(), "go language", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want limit-capped 1", len(items))
	}
	if items[0].Snippet != "Go is a language" {
		t.Errorf("Snippet = %q, want highlight stripped", items[0].Snippet)
	}
	want := server.URL + "/wiki/Go_%28programming_language%29"
	if items[0].Link != want {
		t.Errorf("Link = %q, want %q", items[0].Link, want)
	}
}

func TestClient_AlwaysAvailable(t *testing.T) {
	if !New(Config{}, zap.NewNop()).Available() {
		t.Error("keyless provider must always be available")
	}
}
