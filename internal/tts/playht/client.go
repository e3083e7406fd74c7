package playht

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/tts"
)

type Config struct {
	APIKey  string
	UserID  string
	Voice   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	userID  string
	voice   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.play.ht/api/v2"
	}
	if cfg.Voice == "" {
		cfg.Voice = "s3://voice-cloning-zero-shot/d9ff78ba-d016-47f6-b0ef-dd630f59414e/female-cs/manifest.json"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		userID:  cfg.UserID,
		voice:   cfg.Voice,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string { return "playht" }

// нужны оба: ключ и user id
func (c *Client) Available() bool { return c.apiKey != "" && c.userID != "" }

type ttsRequest struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	OutputFormat string `json:"output_format"`
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if !c.Available() {
		return nil, "", tts.ErrNotConfigured
	}

	body, err := json.Marshal(ttsRequest{
		Text:         text,
		Voice:        c.voice,
		OutputFormat: "mp3",
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/stream", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-User-Id", c.userID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", tts.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, "", tts.ErrAuthFailed
	default:
		c.logger.Error("playht request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(audio)),
		)
		return nil, "", fmt.Errorf("%w: status %d", tts.ErrRequestFailed, resp.StatusCode)
	}

	if len(audio) == 0 {
		return nil, "", tts.ErrEmptyAudio
	}

	return audio, "audio/mpeg", nil
}
