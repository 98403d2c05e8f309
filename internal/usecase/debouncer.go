// Package usecase contains application business logic.
package usecase

import (
	"time"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const (
	// LowScoreThreshold: scores below this count as a bad sample.
	LowScoreThreshold = 60

	DefaultAlertThreshold = 2
	MinAlertThreshold     = 1
	MaxAlertThreshold     = 3

	DefaultAlertCooldown = 30 * time.Second
)

// DebouncerConfig holds alert debouncing parameters.
type DebouncerConfig struct {
	Threshold int           // consecutive bad samples before an alert (1..3)
	Cooldown  time.Duration // minimum gap between two alerts
}

// DefaultDebouncerConfig returns default debouncer configuration.
func DefaultDebouncerConfig() DebouncerConfig {
	return DebouncerConfig{
		Threshold: DefaultAlertThreshold,
		Cooldown:  DefaultAlertCooldown,
	}
}

// IsBadSample reports whether a sample warrants an intervention.
func IsBadSample(r domain.AnalysisResult) bool {
	return r.ConcentrationScore < LowScoreThreshold ||
		r.Posture != domain.PostureGood ||
		r.HasElectronicDevice
}

// AlertDebouncer decides when a spoken intervention should fire.
// One instance per session; not safe for concurrent use.
type AlertDebouncer struct {
	config DebouncerConfig
	state  domain.AlertState
}

// NewAlertDebouncer creates a debouncer. Out-of-range thresholds are clamped.
func NewAlertDebouncer(config DebouncerConfig) *AlertDebouncer {
	if config.Threshold < MinAlertThreshold {
		config.Threshold = MinAlertThreshold
	}
	if config.Threshold > MaxAlertThreshold {
		config.Threshold = MaxAlertThreshold
	}
	if config.Cooldown < 0 {
		config.Cooldown = 0
	}
	return &AlertDebouncer{config: config}
}

// Observe feeds one sample and reports whether an alert fires now.
// Firing stamps LastAlertAt and resets the bad-sample counter.
func (d *AlertDebouncer) Observe(result domain.AnalysisResult, now time.Time) bool {
	if !IsBadSample(result) {
		d.state.ConsecutiveBadCount = 0
		return false
	}

	d.state.ConsecutiveBadCount++
	if d.state.ConsecutiveBadCount < d.config.Threshold {
		return false
	}
	if !d.cooledDown(now) {
		return false
	}

	d.state.LastAlertAt = now
	d.state.ConsecutiveBadCount = 0
	return true
}

func (d *AlertDebouncer) cooledDown(now time.Time) bool {
	if d.state.LastAlertAt.IsZero() {
		return true
	}
	return now.Sub(d.state.LastAlertAt) > d.config.Cooldown
}

// State returns a copy of the counters.
func (d *AlertDebouncer) State() domain.AlertState {
	return d.state
}

// Config returns the effective configuration.
func (d *AlertDebouncer) Config() DebouncerConfig {
	return d.config
}
