package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Speaker issues spoken interventions without blocking.
type Speaker interface {
	Announce(text, voiceID string)
}

// VoiceSelector returns the active narration style.
type VoiceSelector interface {
	ActiveVoiceID() string
}

// SessionCloser turns a finished history into a stored report.
type SessionCloser interface {
	CloseSession(ctx context.Context, history []domain.AnalysisResult, interval time.Duration) (*domain.StoredSession, error)
}

// Config holds monitor configuration.
type Config struct {
	Scheduler SchedulerConfig
	Pomodoro  PomodoroConfig
}

// DefaultConfig returns default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Scheduler: DefaultSchedulerConfig(),
		Pomodoro:  DefaultPomodoroConfig(),
	}
}

// Deps are the collaborators of a Monitor.
type Deps struct {
	Frames     domain.FrameSource
	Encoder    domain.FrameEncoder
	Perception domain.PerceptionClient
	Speaker    Speaker
	Voices     VoiceSelector
	Summarizer SessionCloser
	Registry   *catalog.Registry // optional, defaults to the built-in catalog
	Clock      domain.Clock      // optional, defaults to the wall clock
}

// Monitor owns one monitoring session at a time.
// It starts and stops the capture loop and the work/break timer together
// and closes the session exactly once.
type Monitor struct {
	config    Config
	deps      Deps
	session   *Session
	scheduler *CaptureScheduler
	pomodoro  *PomodoroTimer
	events    *eventBus
	logger    *zap.Logger

	// lifecycle serializes activation changes.
	lifecycle sync.Mutex
}

// New creates an idle monitor.
func New(config Config, deps Deps, logger *zap.Logger) *Monitor {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Registry == nil {
		deps.Registry = catalog.NewRegistry()
	}

	m := &Monitor{
		config:  config,
		deps:    deps,
		session: NewSession(),
		events:  &eventBus{},
		logger:  logger,
	}
	m.scheduler = newCaptureScheduler(config.Scheduler, m.session, deps, m.events, m.onFatal, logger)
	m.pomodoro = newPomodoroTimer(config.Pomodoro, m.session, deps, m.events, logger)
	return m
}

// Subscribe registers an event channel. Events are dropped when it is full.
func (m *Monitor) Subscribe(buffer int) <-chan Event {
	return m.events.subscribe(buffer)
}

// Interval returns the capture cadence.
func (m *Monitor) Interval() time.Duration {
	return m.config.Scheduler.Interval
}

// Start activates monitoring. Starting an active session is a no-op and
// returns false. Only the values of ctx are kept; use Stop to end the session.
func (m *Monitor) Start(ctx context.Context) bool {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	token, ok := m.session.Begin(context.WithoutCancel(ctx))
	if !ok {
		m.logger.Debug("monitoring already active")
		return false
	}

	m.scheduler.Start(token)
	m.pomodoro.Start(token)

	m.logger.Info("monitoring started",
		zap.Uint64("generation", token.Generation()),
		zap.Duration("interval", m.config.Scheduler.Interval))
	m.events.emit(Event{Type: EventStateChange, Active: true, At: m.deps.Clock.Now()})
	return true
}

// Stop deactivates monitoring and closes the session.
// Returns ErrNoSession when there is no unsummarized session and
// ErrNothingToSummarize when it produced no samples.
func (m *Monitor) Stop(ctx context.Context) (*domain.StoredSession, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.deactivateLocked()

	history, ok := m.session.TakeHistory()
	if !ok {
		return nil, domain.ErrNoSession
	}
	if m.deps.Summarizer == nil {
		return nil, fmt.Errorf("%w: no summarizer configured", domain.ErrNoSession)
	}
	return m.deps.Summarizer.CloseSession(ctx, history, m.config.Scheduler.Interval)
}

// Close deactivates monitoring without summarizing and ends all subscriptions.
func (m *Monitor) Close() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.deactivateLocked()
	m.events.close()
}

func (m *Monitor) deactivateLocked() {
	wasActive := m.session.End()
	m.scheduler.Stop()
	m.pomodoro.Reset()
	if wasActive {
		m.logger.Info("monitoring stopped")
		m.events.emit(Event{Type: EventStateChange, Active: false, At: m.deps.Clock.Now()})
	}
}

// onFatal deactivates after an unrecoverable analyze failure.
// The history is kept so a later Stop still produces a report.
func (m *Monitor) onFatal(token *Token, diagnostic string) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if !m.session.Fail(token, diagnostic) {
		return
	}
	m.scheduler.Stop()
	m.pomodoro.Reset()

	m.logger.Error("monitoring stopped after fatal error", zap.String("diagnostic", diagnostic))
	now := m.deps.Clock.Now()
	m.events.emit(Event{Type: EventDiagnostic, Active: false, Message: diagnostic, At: now})
	m.events.emit(Event{Type: EventStateChange, Active: false, At: now})
}

// ResetPomodoro zeroes the work/break timer and restarts it if monitoring.
func (m *Monitor) ResetPomodoro() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.pomodoro.Reset()
	if token := m.session.Current(); token != nil {
		m.pomodoro.Start(token)
	}
}

// Preview speaks the sample phrase of a voice, or of the active voice when
// voiceID is empty. It works whether or not monitoring is active and never
// touches the alert counters.
func (m *Monitor) Preview(voiceID string) error {
	if voiceID == "" {
		voiceID = m.deps.Voices.ActiveVoiceID()
	}
	if !m.deps.Registry.IsKind(voiceID, catalog.KindVoice) {
		return fmt.Errorf("%w: no voice named %q", domain.ErrUnknownItem, voiceID)
	}
	m.deps.Speaker.Announce(m.deps.Registry.Voice(voiceID).Sample, voiceID)
	return nil
}

// Snapshot returns a read-only copy of the whole session state.
func (m *Monitor) Snapshot() domain.SessionSnapshot {
	snap := m.session.Snapshot()
	snap.Pomodoro = m.pomodoro.State()
	snap.Alert = m.scheduler.AlertState()
	return snap
}
