package fixtures

import (
	"context"
	"sync"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Utterance is one recorded Speak call.
type Utterance struct {
	Text    string
	VoiceID string
}

// RecordingNarrator records what would have been spoken.
type RecordingNarrator struct {
	mu         sync.Mutex
	SpeakErr   error
	Summary    string
	SummaryErr error
	spoken     []Utterance
	summaries  int
}

func (n *RecordingNarrator) Speak(ctx context.Context, text, voiceID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.SpeakErr != nil {
		return n.SpeakErr
	}
	n.spoken = append(n.spoken, Utterance{Text: text, VoiceID: voiceID})
	return nil
}

func (n *RecordingNarrator) Summarize(ctx context.Context, history []domain.AnalysisResult) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries++
	return n.Summary, n.SummaryErr
}

// Spoken returns a copy of the recorded utterances.
func (n *RecordingNarrator) Spoken() []Utterance {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Utterance(nil), n.spoken...)
}

// Summaries returns how many summaries were requested.
func (n *RecordingNarrator) Summaries() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.summaries
}
