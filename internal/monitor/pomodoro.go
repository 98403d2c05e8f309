package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const (
	DefaultWorkDuration  = 25 * time.Minute
	DefaultBreakDuration = 5 * time.Minute

	pomodoroTick = time.Second
)

// PomodoroConfig holds work/break durations.
type PomodoroConfig struct {
	Work  time.Duration
	Break time.Duration
}

// DefaultPomodoroConfig returns the classic 25/5 split.
func DefaultPomodoroConfig() PomodoroConfig {
	return PomodoroConfig{Work: DefaultWorkDuration, Break: DefaultBreakDuration}
}

// Transition is a phase change produced by one timer step.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionBreakStart
	TransitionWorkResume
)

// Step advances the timer by one second.
// Elapsed keeps counting through the break and restarts at zero on resume.
func Step(state domain.PomodoroState) (domain.PomodoroState, Transition) {
	state.ElapsedSeconds++
	if !state.IsOnBreak && state.ElapsedSeconds >= state.WorkSeconds {
		state.IsOnBreak = true
		return state, TransitionBreakStart
	}
	if state.IsOnBreak && state.ElapsedSeconds >= state.WorkSeconds+state.BreakSeconds {
		state.IsOnBreak = false
		state.ElapsedSeconds = 0
		return state, TransitionWorkResume
	}
	return state, TransitionNone
}

// PomodoroTimer ticks once per second while the session is active,
// independently of the capture cadence.
type PomodoroTimer struct {
	config   PomodoroConfig
	session  *Session
	speaker  Speaker
	voices   VoiceSelector
	registry *catalog.Registry
	clock    domain.Clock
	events   *eventBus
	logger   *zap.Logger

	mu    sync.Mutex
	state domain.PomodoroState
	timer domain.Timer
	// run changes on every Start and Reset; ticks armed under an older run are ignored.
	run uint64
}

func newPomodoroTimer(config PomodoroConfig, session *Session, deps Deps, events *eventBus, logger *zap.Logger) *PomodoroTimer {
	p := &PomodoroTimer{
		config:   config,
		session:  session,
		speaker:  deps.Speaker,
		voices:   deps.Voices,
		registry: deps.Registry,
		clock:    deps.Clock,
		events:   events,
		logger:   logger,
	}
	p.state = p.zeroState()
	return p
}

func (p *PomodoroTimer) zeroState() domain.PomodoroState {
	return domain.PomodoroState{
		WorkSeconds:  int(p.config.Work / time.Second),
		BreakSeconds: int(p.config.Break / time.Second),
	}
}

// Start begins ticking from zero for token.
func (p *PomodoroTimer) Start(token *Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state = p.zeroState()
	if !p.session.IsCurrent(token) {
		return
	}
	p.armLocked(token, p.run)
}

// Reset cancels ticking and zeroes the state.
func (p *PomodoroTimer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.state = p.zeroState()
}

// State returns a copy of the timer state.
func (p *PomodoroTimer) State() domain.PomodoroState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PomodoroTimer) armLocked(token *Token, run uint64) {
	p.timer = p.clock.AfterFunc(pomodoroTick, func() { p.tick(token, run) })
}

func (p *PomodoroTimer) stopLocked() {
	p.run++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *PomodoroTimer) tick(token *Token, run uint64) {
	p.mu.Lock()
	if run != p.run || !p.session.IsCurrent(token) {
		p.mu.Unlock()
		return
	}
	next, transition := Step(p.state)
	p.state = next
	p.armLocked(token, run)
	p.mu.Unlock()

	now := p.clock.Now()
	p.events.emit(Event{Type: EventProgress, Active: true, Pomodoro: next, At: now})
	if transition == TransitionNone {
		return
	}

	voiceID := p.voices.ActiveVoiceID()
	voice := p.registry.Voice(voiceID)
	text := voice.WorkResume
	if transition == TransitionBreakStart {
		text = voice.BreakStart
	}
	p.logger.Info("pomodoro phase change",
		zap.Bool("on_break", next.IsOnBreak),
		zap.String("voice", voiceID))
	p.speaker.Announce(text, voiceID)
	p.events.emit(Event{Type: EventPhaseChange, Active: true, Pomodoro: next, Message: text, At: now})
}
