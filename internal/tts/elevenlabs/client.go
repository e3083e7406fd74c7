package elevenlabs

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

const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel

type Config struct {
	APIKey  string
	VoiceID string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = defaultVoiceID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Name() string { return "elevenlabs" }

func (c *Client) Available() bool { return c.apiKey != "" }

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if !c.Available() {
		return nil, "", tts.ErrNotConfigured
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/text-to-speech/" + c.voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

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
		c.logger.Error("elevenlabs request failed",
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
