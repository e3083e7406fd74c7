package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/tts"
	ttsmock "github.com/nexahq/nexa-server/internal/tts/mock"
)

func TestVoiceService_Speak(t *testing.T) {
	first := ttsmock.New().WithError(errors.New("quota exceeded"))
	second := ttsmock.New()
	second.SpeakerName = "backup"

	svc := NewVoiceService(VoiceDeps{
		Speakers: []tts.Speaker{first, second},
		Logger:   zap.NewNop(),
	})

	audio, mime, err := svc.Speak(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if string(audio) != "mp3-bytes" || mime != "audio/mpeg" {
		t.Errorf("Speak() = %q, %q", audio, mime)
	}
	if first.CallCount != 1 || second.CallCount != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.CallCount, second.CallCount)
	}
}

func TestVoiceService_Speak_NoSpeaker(t *testing.T) {
	svc := NewVoiceService(VoiceDeps{
		Speakers: []tts.Speaker{ttsmock.New().WithConfigured(false)},
		Logger:   zap.NewNop(),
	})

	_, _, err := svc.Speak(context.Background(), "hello")
	if !errors.Is(err, domain.ErrNoSpeaker) {
		t.Errorf("Speak() error = %v, want ErrNoSpeaker", err)
	}
}

func TestVoiceService_Speak_EmptyText(t *testing.T) {
	svc := NewVoiceService(VoiceDeps{
		Speakers: []tts.Speaker{ttsmock.New()},
		Logger:   zap.NewNop(),
	})

	_, _, err := svc.Speak(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("Speak() error = %v, want ErrEmptyText", err)
	}
}

func TestVoiceService_Speak_AllFailed(t *testing.T) {
	svc := NewVoiceService(VoiceDeps{
		Speakers: []tts.Speaker{ttsmock.New().WithError(errors.New("down"))},
		Logger:   zap.NewNop(),
	})

	_, _, err := svc.Speak(context.Background(), "hello")
	if !errors.Is(err, tts.ErrRequestFailed) {
		t.Errorf("Speak() error = %v, want ErrRequestFailed", err)
	}
}
