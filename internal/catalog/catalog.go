// Package catalog holds the static voice and theme tables.
// Each cosmetic item (voice style, theme) is a fixed entry keyed by ID.
package catalog

// Kind distinguishes the two catalogs.
type Kind string

const (
	KindVoice Kind = "voice"
	KindTheme Kind = "theme"
)

// Default identifiers. Always unlocked, used as fallbacks for unknown ids.
const (
	DefaultVoiceID = "gentle"
	DefaultThemeID = "classic"
)

// Item is an entry of the cosmetic catalog.
type Item interface {
	// ID returns the unique identifier (e.g., "gentle", "midnight").
	ID() string

	// Name returns a human-readable name for display.
	Name() string

	// Kind reports which catalog the item belongs to.
	Kind() Kind

	// Price is the cost in coins. Zero means free.
	Price() int
}

// Voice is a narration style with fixed canned phrases.
type Voice struct {
	id    string
	name  string
	price int

	// BreakStart is spoken when the pomodoro enters a break.
	BreakStart string
	// WorkResume is spoken when the pomodoro returns to work.
	WorkResume string
	// Nudge replaces an empty feedback string in an alert.
	Nudge string
	// Sample is played by the preview command.
	Sample string
}

func (v Voice) ID() string { return v.id }
func (v Voice) Name() string { return v.name }
func (v Voice) Kind() Kind { return KindVoice }
func (v Voice) Price() int { return v.price }

// Theme is a presentation palette. The engine only reads its id.
type Theme struct {
	id    string
	name  string
	price int
}

func (t Theme) ID() string { return t.id }
func (t Theme) Name() string { return t.name }
func (t Theme) Kind() Kind { return KindTheme }
func (t Theme) Price() int { return t.price }

// Voices returns the five voice styles.
func Voices() []Voice {
	return []Voice{
		{
			id: DefaultVoiceID, name: "Gentle Tutor", price: 0,
			BreakStart: "Great work. Let's take a short break and rest your eyes.",
			WorkResume: "Break's over. Let's ease back into focus.",
			Nudge:      "Let's gently bring our attention back to the screen.",
			Sample:     "Hello! I'll keep you company while you study.",
		},
		{
			id: "coach", name: "Sports Coach", price: 100,
			BreakStart: "Nice session! Shake it out, it's break time.",
			WorkResume: "Back in the game. Let's go!",
			Nudge:      "Stay with it, you've got this!",
			Sample:     "Alright team, let's crush this study block!",
		},
		{
			id: "sergeant", name: "Drill Sergeant", price: 150,
			BreakStart: "Halt! Break time, recruit. Hydrate!",
			WorkResume: "Break over! Back to your post!",
			Nudge:      "Eyes front! Sit up straight!",
			Sample:     "Listen up! Nobody slacks off on my watch!",
		},
		{
			id: "butler", name: "Butler", price: 200,
			BreakStart: "Might I suggest a brief respite? Tea is served.",
			WorkResume: "Shall we resume our studies?",
			Nudge:      "Pardon me, your attention appears to have wandered.",
			Sample:     "Good evening. I shall be attending to your focus today.",
		},
		{
			id: "robot", name: "Robot", price: 300,
			BreakStart: "Work cycle complete. Initiating rest protocol.",
			WorkResume: "Rest protocol complete. Resuming work cycle.",
			Nudge:      "Attention deviation detected. Please refocus.",
			Sample:     "Beep. Focus monitoring unit online.",
		},
	}
}

// Themes returns the six themes.
func Themes() []Theme {
	return []Theme{
		{id: DefaultThemeID, name: "Classic", price: 0},
		{id: "midnight", name: "Midnight", price: 50},
		{id: "forest", name: "Forest", price: 80},
		{id: "ocean", name: "Ocean", price: 80},
		{id: "sunset", name: "Sunset", price: 120},
		{id: "neon", name: "Neon", price: 200},
	}
}
