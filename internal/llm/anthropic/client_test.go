package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/llm"
)

func TestClient_CompleteWithSystem(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "be brief" {
			t.Errorf("system = %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(messagesResponse{
			Content: []contentBlock{{Type: "text", Text: "summary text"}},
		})
	}))
	defer server.Close()

	client := New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, logger)

	got, err := client.CompleteWithSystem(context.Background(), "be brief", "summarize this")
	if err != nil {
		t.Fatalf("CompleteWithSystem() error = %v", err)
	}
	if got != "summary text" {
		t.Errorf("CompleteWithSystem() = %q", got)
	}
}

func TestClient_CompleteWithSystem_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, llm.ErrAuthFailed},
		{"rate limit", http.StatusTooManyRequests, `{}`, llm.ErrRateLimit},
		{"server error", http.StatusInternalServerError, `{}`, llm.ErrRequestFailed},
		{"empty content", http.StatusOK, `{"content":[]}`, llm.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

			_, err := client.CompleteWithSystem(context.Background(), "s", "p")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CompleteWithSystem() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
