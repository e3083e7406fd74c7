package tts

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("speaker not configured")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyAudio    = errors.New("empty audio")
)

// Speaker озвучивает текст; вторым значением возвращается MIME-тип
// аудиопотока
type Speaker interface {
	Name() string
	Available() bool
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}
