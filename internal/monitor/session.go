// Package monitor runs the monitoring session: capture loop, work/break
// timer and session lifecycle.
package monitor

import (
	"context"
	"sync"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Token identifies one activation of a session.
// Every continuation carries the token it was started with and must check
// Session.IsCurrent after each blocking call.
type Token struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// Context is canceled when the activation ends.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Generation returns the activation number.
func (t *Token) Generation() uint64 {
	return t.generation
}

// Session is the shared monitoring state.
type Session struct {
	mu         sync.Mutex
	generation uint64
	current    *Token
	history    []domain.AnalysisResult
	latest     *domain.AnalysisResult
	lastError  string
	closed     bool
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{closed: true}
}

// Begin activates the session and resets its state.
// Returns false if the session is already active.
func (s *Session) Begin(parent context.Context) (*Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return nil, false
	}

	s.generation++
	ctx, cancel := context.WithCancel(parent)
	s.current = &Token{generation: s.generation, ctx: ctx, cancel: cancel}
	s.history = nil
	s.latest = nil
	s.lastError = ""
	s.closed = false
	return s.current, true
}

// End deactivates the current activation, if any.
func (s *Session) End() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endLocked()
}

// Fail records a diagnostic and deactivates, but only for the current token.
func (s *Session) Fail(token *Token, diagnostic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrentLocked(token) {
		return false
	}
	s.lastError = diagnostic
	return s.endLocked()
}

func (s *Session) endLocked() bool {
	if s.current == nil {
		return false
	}
	s.current.cancel()
	s.current = nil
	return true
}

// IsCurrent reports whether token still owns the active session.
func (s *Session) IsCurrent(token *Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isCurrentLocked(token)
}

func (s *Session) isCurrentLocked(token *Token) bool {
	return token != nil && s.current == token
}

// IsActive reports whether any activation is running.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Record appends a stamped sample and clears the last error.
func (s *Session) Record(token *Token, result domain.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrentLocked(token) {
		return false
	}
	s.history = append(s.history, result)
	latest := result
	s.latest = &latest
	s.lastError = ""
	return true
}

// SetError stores a diagnostic for the current token.
func (s *Session) SetError(token *Token, diagnostic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrentLocked(token) {
		return false
	}
	s.lastError = diagnostic
	return true
}

// Current returns the active token, or nil.
func (s *Session) Current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TakeHistory returns the history of the last activation exactly once.
// It reports false while active or after the history was already taken.
func (s *Session) TakeHistory() ([]domain.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil || s.closed {
		return nil, false
	}
	s.closed = true
	return append([]domain.AnalysisResult(nil), s.history...), true
}

// Snapshot fills the session part of a SessionSnapshot.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domain.SessionSnapshot{
		IsActive:  s.current != nil,
		History:   append([]domain.AnalysisResult(nil), s.history...),
		LastError: s.lastError,
	}
	if s.latest != nil {
		latest := *s.latest
		snap.Latest = &latest
	}
	return snap
}
