// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"strings"
	"time"
)

// Posture is the perception service's judgment of how the user sits.
type Posture string

const (
	PostureGood      Posture = "GOOD"
	PostureSlouching Posture = "SLOUCHING"
	PostureTooClose  Posture = "TOO_CLOSE"
	PostureTooFar    Posture = "TOO_FAR"
	PostureUnknown   Posture = "UNKNOWN"
)

// AllPostures is the fixed posture domain, in display order.
var AllPostures = []Posture{
	PostureGood,
	PostureSlouching,
	PostureTooClose,
	PostureTooFar,
	PostureUnknown,
}

// ParsePosture maps a wire value to a Posture. Anything unrecognized is UNKNOWN.
func ParsePosture(s string) Posture {
	candidate := Posture(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range AllPostures {
		if p == candidate {
			return p
		}
	}
	return PostureUnknown
}

// AnalysisResult is one perception sample.
// Produced by PerceptionClient without a timestamp; the scheduler stamps it.
type AnalysisResult struct {
	Timestamp            time.Time `json:"timestamp"`
	ConcentrationScore   int       `json:"concentrationScore"`
	IsLookingAtScreen    bool      `json:"isLookingAtScreen"`
	Posture              Posture   `json:"posture"`
	HasElectronicDevice  bool      `json:"hasElectronicDevice"`
	DetectedDistractions []string  `json:"detectedDistractions"`
	Feedback             string    `json:"feedback"`
}

// IsDistracted reports whether the sample counts towards the distraction tally.
func (r AnalysisResult) IsDistracted() bool {
	return len(r.DetectedDistractions) > 0 || r.HasElectronicDevice
}

// ClampScore bounds a raw concentration score to 0..100.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// SessionSnapshot is a read-only copy of the monitoring session state.
type SessionSnapshot struct {
	IsActive  bool
	History   []AnalysisResult
	Latest    *AnalysisResult
	LastError string
	Pomodoro  PomodoroState
	Alert     AlertState
}

// AlertState tracks the debouncing counters of one session.
type AlertState struct {
	ConsecutiveBadCount int
	LastAlertAt         time.Time // zero = never alerted
}

// PomodoroState is the work/break timer state.
type PomodoroState struct {
	ElapsedSeconds int
	IsOnBreak      bool
	WorkSeconds    int
	BreakSeconds   int
}

// SessionSummary is the aggregate report of a closed session.
type SessionSummary struct {
	AverageScore         int             `json:"averageScore"`
	TotalDurationSeconds int             `json:"totalDurationSeconds"`
	DistractionCount     int             `json:"distractionCount"`
	PostureStats         map[Posture]int `json:"postureStats"`
	AIComment            string          `json:"aiComment"`
}

// StoredSession is a persisted session report.
type StoredSession struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	EarnedCoins int       `json:"earnedCoins"`
	SessionSummary
}

// Profile is the persisted economy state: wallet, unlocks and preferences.
type Profile struct {
	TotalCoins      int
	UnlockedItemIDs []string
	ActiveThemeID   string
	ActiveVoiceID   string
}

// IsUnlocked reports whether the item is owned.
func (p Profile) IsUnlocked(id string) bool {
	for _, owned := range p.UnlockedItemIDs {
		if owned == id {
			return true
		}
	}
	return false
}
