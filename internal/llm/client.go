package llm

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("client not configured")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Client - один LLM-бэкенд. Кто именно отвечает, решает
// service-слой, перебирая клиентов по порядку.
type Client interface {
	Name() string
	Available() bool
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}
