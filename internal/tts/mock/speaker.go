package mock

import (
	"context"

	"github.com/nexahq/nexa-server/internal/tts"
)

type Speaker struct {
	SpeakerName string
	Configured  bool
	Audio       []byte
	ContentType string
	Error       error

	CallCount int
	LastText  string
}

func New() *Speaker {
	return &Speaker{
		SpeakerName: "mock",
		Configured:  true,
		Audio:       []byte("mp3-bytes"),
		ContentType: "audio/mpeg",
	}
}

func (s *Speaker) WithError(err error) *Speaker {
	s.Error = err
	return s
}

func (s *Speaker) WithConfigured(configured bool) *Speaker {
	s.Configured = configured
	return s
}

func (s *Speaker) Name() string { return s.SpeakerName }

func (s *Speaker) Available() bool { return s.Configured }

func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	s.CallCount++
	s.LastText = text

	if s.Error != nil {
		return nil, "", s.Error
	}
	return s.Audio, s.ContentType, nil
}

var _ tts.Speaker = (*Speaker)(nil)
