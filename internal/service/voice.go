package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/metrics"
	"github.com/nexahq/nexa-server/internal/tts"
)

// maxSpeakLength защищает от счетов за озвучку романов
const maxSpeakLength = 5000

type VoiceService interface {
	Speak(ctx context.Context, text string) (audio []byte, mime string, err error)
}

type VoiceDeps struct {
	// Speakers пробуются по порядку до первого успеха
	Speakers []tts.Speaker
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type voiceService struct {
	speakers []tts.Speaker
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewVoiceService(deps VoiceDeps) VoiceService {
	return &voiceService{
		speakers: deps.Speakers,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

func (s *voiceService) Speak(ctx context.Context, text string) ([]byte, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", domain.ErrEmptyText
	}
	if len(text) > maxSpeakLength {
		text = text[:maxSpeakLength]
	}

	configured := false
	for _, sp := range s.speakers {
		if !sp.Available() {
			continue
		}
		configured = true

		start := time.Now()
		audio, mime, err := sp.Synthesize(ctx, text)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordRequest("voice:"+sp.Name(), "error", time.Since(start))
			}
			s.logger.Warn("speaker failed, trying next",
				zap.String("speaker", sp.Name()),
				zap.Error(err),
			)
			continue
		}

		if s.metrics != nil {
			s.metrics.RecordRequest("voice:"+sp.Name(), "success", time.Since(start))
		}
		return audio, mime, nil
	}

	if !configured {
		return nil, "", domain.ErrNoSpeaker
	}
	return nil, "", tts.ErrRequestFailed
}
