package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// DefaultSpeakTimeout bounds one remote narration call.
const DefaultSpeakTimeout = 20 * time.Second

// Announcer speaks interventions without blocking its caller.
// Remote narration failures fall back to the local speaker and are only logged.
type Announcer struct {
	narrator domain.NarrationClient
	fallback domain.LocalSpeaker
	spawn    func(func())
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAnnouncer creates an announcer that speaks on background goroutines.
func NewAnnouncer(narrator domain.NarrationClient, fallback domain.LocalSpeaker, logger *zap.Logger) *Announcer {
	return &Announcer{
		narrator: narrator,
		fallback: fallback,
		spawn:    func(fn func()) { go fn() },
		timeout:  DefaultSpeakTimeout,
		logger:   logger,
	}
}

// NewSyncAnnouncer creates an announcer that speaks inline (for testing).
func NewSyncAnnouncer(narrator domain.NarrationClient, fallback domain.LocalSpeaker, logger *zap.Logger) *Announcer {
	a := NewAnnouncer(narrator, fallback, logger)
	a.spawn = func(fn func()) { fn() }
	return a
}

// Announce issues the narration and returns immediately.
func (a *Announcer) Announce(text, voiceID string) {
	if text == "" {
		return
	}
	a.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		a.speak(ctx, text, voiceID)
	})
}

func (a *Announcer) speak(ctx context.Context, text, voiceID string) {
	if a.narrator != nil {
		err := a.narrator.Speak(ctx, text, voiceID)
		if err == nil {
			return
		}
		a.logger.Warn("narration failed, using local speech",
			zap.String("voice", voiceID),
			zap.Error(err))
	}

	if a.fallback == nil {
		return
	}
	if err := a.fallback.Say(ctx, text); err != nil {
		a.logger.Debug("local speech unavailable", zap.Error(err))
	}
}
