package monitor

import (
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// EventType defines the type of Monitor event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventSample      EventType = "sample"
	EventDiagnostic  EventType = "diagnostic"
	EventAlert       EventType = "alert"
	EventPhaseChange EventType = "phase_change"
	EventProgress    EventType = "progress"
)

// Event is a session update for presentation layers.
type Event struct {
	Type     EventType
	Active   bool
	Sample   *domain.AnalysisResult
	Pomodoro domain.PomodoroState
	Message  string
	At       time.Time
}

// eventBus fans events out to subscribers. Slow subscribers lose events.
type eventBus struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool
}

func (b *eventBus) subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

func (b *eventBus) emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *eventBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
