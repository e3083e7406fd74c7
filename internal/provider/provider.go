package provider

import (
	"context"
	"errors"

	"github.com/nexahq/nexa-server/internal/domain"
)

var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrUnauthorized  = errors.New("invalid API key")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrRequestFailed = errors.New("request failed")
	ErrParseFailed   = errors.New("failed to parse response")
)

// Provider - один внешний источник (поисковик, соцсеть, видео-индекс).
// Search не ретраит сам: повторы и fallback - забота chain.
type Provider interface {
	Name() string

	// Available сообщает, есть ли нужные креды/конфиг.
	// Chain пропускает недоступных без вызова Search.
	Available() bool

	Search(ctx context.Context, query string, limit int) ([]domain.Item, error)
}

// ClampLimit зажимает лимит в [1, max] провайдера
func ClampLimit(limit, max int) int {
	if limit <= 0 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
