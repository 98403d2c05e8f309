package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// mockNarrator implements domain.NarrationClient for testing
type mockNarrator struct {
	mu         sync.Mutex
	speakErr   error
	summary    string
	summaryErr error
	spoken     []string
	voices     []string
	summarized int
}

func (m *mockNarrator) Speak(ctx context.Context, text, voiceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.speakErr != nil {
		return m.speakErr
	}
	m.spoken = append(m.spoken, text)
	m.voices = append(m.voices, voiceID)
	return nil
}

func (m *mockNarrator) Summarize(ctx context.Context, history []domain.AnalysisResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summarized++
	return m.summary, m.summaryErr
}

// mockSpeaker implements domain.LocalSpeaker for testing
type mockSpeaker struct {
	err  error
	said []string
}

func (m *mockSpeaker) Say(ctx context.Context, text string) error {
	m.said = append(m.said, text)
	return m.err
}

func TestAnnouncer_SpeaksThroughNarrator(t *testing.T) {
	narrator := &mockNarrator{}
	speaker := &mockSpeaker{}
	a := NewSyncAnnouncer(narrator, speaker, zap.NewNop())

	a.Announce("sit up", "coach")

	assert.Equal(t, []string{"sit up"}, narrator.spoken)
	assert.Equal(t, []string{"coach"}, narrator.voices)
	assert.Empty(t, speaker.said)
}

func TestAnnouncer_FallsBackAndOnlyLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	narrator := &mockNarrator{speakErr: errors.New("tts quota")}
	speaker := &mockSpeaker{}
	a := NewSyncAnnouncer(narrator, speaker, zap.New(core))

	assert.NotPanics(t, func() { a.Announce("eyes on screen", "robot") })

	assert.Equal(t, []string{"eyes on screen"}, speaker.said)
	assert.Equal(t, 1, logs.FilterMessage("narration failed, using local speech").Len())
}

func TestAnnouncer_FallbackFailureIsSwallowed(t *testing.T) {
	narrator := &mockNarrator{speakErr: errors.New("down")}
	speaker := &mockSpeaker{err: errors.New("no say binary")}
	a := NewSyncAnnouncer(narrator, speaker, zap.NewNop())

	assert.NotPanics(t, func() { a.Announce("hello", "gentle") })
	assert.Len(t, speaker.said, 1)
}

func TestAnnouncer_EmptyTextIsIgnored(t *testing.T) {
	narrator := &mockNarrator{}
	a := NewSyncAnnouncer(narrator, nil, zap.NewNop())

	a.Announce("", "gentle")

	assert.Empty(t, narrator.spoken)
}

func TestAnnouncer_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	narrator := &blockingNarrator{release: release, done: make(chan struct{})}
	a := NewAnnouncer(narrator, nil, zap.NewNop())

	a.Announce("slow", "gentle") // returns while Speak is still blocked
	close(release)
	<-narrator.done
}

type blockingNarrator struct {
	release chan struct{}
	done    chan struct{}
}

func (b *blockingNarrator) Speak(ctx context.Context, text, voiceID string) error {
	<-b.release
	close(b.done)
	return nil
}

func (b *blockingNarrator) Summarize(ctx context.Context, history []domain.AnalysisResult) (string, error) {
	return "", nil
}
