package main

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/monitor"
)

// mockSession implements sessionControl for testing
type mockSession struct {
	active atomic.Bool
	resets atomic.Int32
}

func (m *mockSession) Snapshot() domain.SessionSnapshot {
	return domain.SessionSnapshot{IsActive: m.active.Load()}
}

func (m *mockSession) ResetPomodoro() {
	m.resets.Add(1)
}

func runWatch(ctx context.Context, events chan monitor.Event, hup chan os.Signal, m *mockSession) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		watchEvents(ctx, events, hup, m, 10*time.Millisecond)
		close(done)
	}()
	return done
}

func isClosed(done <-chan struct{}) func() bool {
	return func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

func TestWatchEvents_ExitsOnDeactivationEvent(t *testing.T) {
	m := &mockSession{}
	m.active.Store(true)
	events := make(chan monitor.Event, 2)
	events <- monitor.Event{Type: monitor.EventStateChange, Active: true}
	events <- monitor.Event{Type: monitor.EventStateChange, Active: false}

	done := runWatch(context.Background(), events, make(chan os.Signal), m)

	assert.Eventually(t, isClosed(done), time.Second, 5*time.Millisecond)
}

func TestWatchEvents_ExitsWhenDeactivationEventIsLost(t *testing.T) {
	m := &mockSession{}
	m.active.Store(true)
	events := make(chan monitor.Event)

	done := runWatch(context.Background(), events, make(chan os.Signal), m)
	assert.Never(t, isClosed(done), 50*time.Millisecond, 5*time.Millisecond)

	m.active.Store(false)
	assert.Eventually(t, isClosed(done), time.Second, 5*time.Millisecond)
}

func TestWatchEvents_HangupResetsPomodoro(t *testing.T) {
	m := &mockSession{}
	m.active.Store(true)
	hup := make(chan os.Signal, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := runWatch(ctx, make(chan monitor.Event), hup, m)
	hup <- syscall.SIGHUP

	assert.Eventually(t, func() bool { return m.resets.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.Eventually(t, isClosed(done), time.Second, 5*time.Millisecond)
}
