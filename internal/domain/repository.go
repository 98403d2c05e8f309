package domain

import (
	"context"
	"image"
	"time"
)

// PerceptionClient converts one compressed frame into a judgment.
// Implementation: HTTP vision endpoint (infra.HTTPPerception).
type PerceptionClient interface {
	// Analyze returns a result without a timestamp.
	// Errors wrap ErrRateLimited, ErrServiceUnavailable, ErrUnauthorized or
	// ErrMisconfigured when the failure can be classified.
	Analyze(ctx context.Context, jpeg []byte) (AnalysisResult, error)
}

// NarrationClient speaks text and summarizes sessions.
type NarrationClient interface {
	// Speak plays text in the given voice style. Best effort.
	Speak(ctx context.Context, text, voiceID string) error

	// Summarize returns a natural-language comment on the history.
	Summarize(ctx context.Context, history []AnalysisResult) (string, error)
}

// LocalSpeaker is the on-device text-to-speech fallback.
type LocalSpeaker interface {
	Say(ctx context.Context, text string) error
}

// FrameSource yields the current camera frame.
type FrameSource interface {
	// Capture returns ErrFrameNotReady while the device is warming up.
	Capture(ctx context.Context) (image.Image, error)
}

// FrameEncoder downsamples and compresses a frame for upload.
type FrameEncoder interface {
	Encode(img image.Image) ([]byte, error)
}

// SessionStore is durable key/value persistence.
// Implementation: SQLCipher encrypted SQLite (infra.EncryptedStore).
type SessionStore interface {
	// Get returns the value and whether the key exists.
	Get(key string) ([]byte, bool, error)

	// Set stores a value.
	Set(key string, value []byte) error

	// SetMany stores all entries or none of them.
	SetMany(entries map[string][]byte) error

	// Remove deletes a key. Removing a missing key is not an error.
	Remove(key string) error

	// Close releases resources (e.g., database connection).
	Close() error
}

// Timer is a pending callback created by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. Reports whether it was pending.
	Stop() bool
}

// Clock abstracts time so schedulers can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// KeyProvider manages the database encryption key.
// Implementation: FileKeyProvider (local 0600 file).
type KeyProvider interface {
	GetKey() ([]byte, error)
	StoreKey(key []byte) error
	KeyExists() bool
}
