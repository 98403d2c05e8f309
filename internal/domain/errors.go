package domain

import (
	"context"
	"errors"
)

// Perception failures.
var (
	// ErrRateLimited indicates quota exhaustion; retry after a long cooldown.
	ErrRateLimited = errors.New("perception rate limited")

	// ErrServiceUnavailable indicates the service or model is down or missing.
	ErrServiceUnavailable = errors.New("perception service unavailable")

	// ErrUnauthorized indicates a rejected credential. Fatal.
	ErrUnauthorized = errors.New("perception unauthorized")

	// ErrMisconfigured indicates missing endpoint or key. Fatal.
	ErrMisconfigured = errors.New("perception misconfigured")

	// ErrFrameNotReady indicates the camera has no frame yet. Not a failure.
	ErrFrameNotReady = errors.New("camera frame not ready")
)

// Narration and session failures.
var (
	ErrNarration          = errors.New("narration failed")
	ErrNothingToSummarize = errors.New("nothing to summarize")
	ErrNoSession          = errors.New("no monitoring session")
	ErrAlreadyRunning     = errors.New("another monitoring session is running")
)

// Economy failures.
var (
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrUnknownItem       = errors.New("unknown catalog item")
	ErrAlreadyUnlocked   = errors.New("item already unlocked")
	ErrItemLocked        = errors.New("item not unlocked")
)

// FailureKind decides how the capture loop reacts to an analyze error.
type FailureKind int

const (
	// FailureTransient retries at the normal cadence.
	FailureTransient FailureKind = iota
	// FailureRateLimited retries after the long cooldown.
	FailureRateLimited
	// FailureUnavailable retries after the long cooldown.
	FailureUnavailable
	// FailureFatal deactivates the session.
	FailureFatal
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureUnavailable:
		return "unavailable"
	case FailureFatal:
		return "fatal"
	default:
		return "transient"
	}
}

// ClassifyFailure maps an error onto the retry taxonomy.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrMisconfigured):
		return FailureFatal
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, ErrServiceUnavailable):
		return FailureUnavailable
	default:
		return FailureTransient
	}
}

// Diagnostic returns the short user-visible message for a failure.
func Diagnostic(err error) string {
	switch ClassifyFailure(err) {
	case FailureFatal:
		return "Perception service rejected the configured credentials. Monitoring stopped; check the API key and endpoint."
	case FailureRateLimited:
		return "Perception quota exceeded. Retrying in one minute."
	case FailureUnavailable:
		return "Perception service unavailable. Retrying in one minute; contact the administrator if this persists."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Perception request timed out. Retrying."
	}
	return "Analysis failed: network or temporary error. Retrying."
}
