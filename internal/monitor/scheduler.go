package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
)

const (
	DefaultCaptureInterval = 5 * time.Second
	NotReadyRetryDelay     = 1 * time.Second
	BackoffDelay           = 60 * time.Second
	DefaultAnalyzeTimeout  = 30 * time.Second
)

// AllowedIntervals are the selectable capture cadences.
var AllowedIntervals = []time.Duration{3 * time.Second, 5 * time.Second, 10 * time.Second}

// IsAllowedInterval reports whether d is a selectable cadence.
func IsAllowedInterval(d time.Duration) bool {
	for _, allowed := range AllowedIntervals {
		if d == allowed {
			return true
		}
	}
	return false
}

// SchedulerConfig holds capture loop configuration.
type SchedulerConfig struct {
	Interval       time.Duration // cadence after a settled analysis
	NotReadyDelay  time.Duration // retry when the camera has no frame yet
	BackoffDelay   time.Duration // retry after rate limiting or outage
	AnalyzeTimeout time.Duration // deadline of one perception call
	Debouncer      usecase.DebouncerConfig
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:       DefaultCaptureInterval,
		NotReadyDelay:  NotReadyRetryDelay,
		BackoffDelay:   BackoffDelay,
		AnalyzeTimeout: DefaultAnalyzeTimeout,
		Debouncer:      usecase.DefaultDebouncerConfig(),
	}
}

// CaptureScheduler drives the capture -> analyze -> react loop.
// At most one analysis is in flight; the next tick is armed only after
// the previous one settles.
type CaptureScheduler struct {
	config     SchedulerConfig
	session    *Session
	frames     domain.FrameSource
	encoder    domain.FrameEncoder
	perception domain.PerceptionClient
	speaker    Speaker
	voices     VoiceSelector
	registry   *catalog.Registry
	clock      domain.Clock
	events     *eventBus
	onFatal    func(token *Token, diagnostic string)
	logger     *zap.Logger

	mu        sync.Mutex
	timer     domain.Timer
	debouncer *usecase.AlertDebouncer
}

func newCaptureScheduler(config SchedulerConfig, session *Session, deps Deps, events *eventBus, onFatal func(*Token, string), logger *zap.Logger) *CaptureScheduler {
	return &CaptureScheduler{
		config:     config,
		session:    session,
		frames:     deps.Frames,
		encoder:    deps.Encoder,
		perception: deps.Perception,
		speaker:    deps.Speaker,
		voices:     deps.Voices,
		registry:   deps.Registry,
		clock:      deps.Clock,
		events:     events,
		onFatal:    onFatal,
		logger:     logger,
		debouncer:  usecase.NewAlertDebouncer(config.Debouncer),
	}
}

// Start arms the first tick immediately with a fresh debouncer.
func (s *CaptureScheduler) Start(token *Token) {
	s.mu.Lock()
	s.debouncer = usecase.NewAlertDebouncer(s.config.Debouncer)
	s.mu.Unlock()
	s.schedule(token, 0)
}

// Stop cancels the pending tick, if any.
func (s *CaptureScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// AlertState returns the debouncer counters of the current session.
func (s *CaptureScheduler) AlertState() domain.AlertState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debouncer.State()
}

func (s *CaptureScheduler) schedule(token *Token, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsCurrent(token) {
		return
	}
	s.timer = s.clock.AfterFunc(delay, func() { s.tick(token) })
}

func (s *CaptureScheduler) tick(token *Token) {
	if !s.session.IsCurrent(token) {
		return
	}
	ctx := token.Context()

	img, err := s.frames.Capture(ctx)
	if !s.session.IsCurrent(token) {
		return
	}
	if errors.Is(err, domain.ErrFrameNotReady) {
		s.logger.Debug("camera not ready, retrying")
		s.schedule(token, s.config.NotReadyDelay)
		return
	}
	if err != nil {
		s.fail(token, fmt.Errorf("failed to capture frame: %w", err))
		return
	}

	jpeg, err := s.encoder.Encode(img)
	if err != nil {
		s.fail(token, fmt.Errorf("failed to encode frame: %w", err))
		return
	}

	result, err := s.analyze(ctx, jpeg)
	if !s.session.IsCurrent(token) {
		s.logger.Debug("dropping analysis of an ended session")
		return
	}
	if err != nil {
		s.fail(token, err)
		return
	}

	result.Timestamp = s.clock.Now()
	if !s.session.Record(token, result) {
		return
	}
	sample := result
	s.events.emit(Event{Type: EventSample, Active: true, Sample: &sample, At: result.Timestamp})

	s.mu.Lock()
	fire := s.debouncer.Observe(result, result.Timestamp)
	s.mu.Unlock()
	if fire {
		s.alert(result)
	}

	s.schedule(token, s.config.Interval)
}

func (s *CaptureScheduler) analyze(ctx context.Context, jpeg []byte) (domain.AnalysisResult, error) {
	ctx, span := otel.Tracer("focuscam/monitor").Start(ctx, "perception.analyze",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("frame.bytes", len(jpeg)))

	if s.config.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AnalyzeTimeout)
		defer cancel()
	}

	result, err := s.perception.Analyze(ctx, jpeg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ClassifyFailure(err).String())
		return result, err
	}
	span.SetAttributes(
		attribute.Int("result.score", result.ConcentrationScore),
		attribute.String("result.posture", string(result.Posture)))
	return result, nil
}

func (s *CaptureScheduler) fail(token *Token, err error) {
	kind := domain.ClassifyFailure(err)
	diagnostic := domain.Diagnostic(err)
	s.logger.Warn("analysis failed",
		zap.String("kind", kind.String()),
		zap.Error(err))

	if kind == domain.FailureFatal {
		s.onFatal(token, diagnostic)
		return
	}

	if !s.session.SetError(token, diagnostic) {
		return
	}
	s.events.emit(Event{Type: EventDiagnostic, Active: true, Message: diagnostic, At: s.clock.Now()})

	delay := s.config.Interval
	if kind == domain.FailureRateLimited || kind == domain.FailureUnavailable {
		delay = s.config.BackoffDelay
	}
	s.schedule(token, delay)
}

func (s *CaptureScheduler) alert(result domain.AnalysisResult) {
	voiceID := s.voices.ActiveVoiceID()
	text := result.Feedback
	if text == "" {
		text = s.registry.Voice(voiceID).Nudge
	}
	s.logger.Info("intervention",
		zap.Int("score", result.ConcentrationScore),
		zap.String("posture", string(result.Posture)),
		zap.String("voice", voiceID))
	s.speaker.Announce(text, voiceID)
	s.events.emit(Event{Type: EventAlert, Active: true, Message: text, At: result.Timestamp})
}
