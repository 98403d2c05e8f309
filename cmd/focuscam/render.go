package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/eliteGoblin/focusd/focuscam/internal/catalog"
	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
	"github.com/eliteGoblin/focusd/focuscam/internal/monitor"
)

const timeLayout = "2006-01-02 15:04"

func scoreString(score int) string {
	switch {
	case score >= 80:
		return color.GreenString("%3d", score)
	case score >= 60:
		return color.YellowString("%3d", score)
	default:
		return color.RedString("%3d", score)
	}
}

func formatSeconds(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// renderEvent formats one monitor event as a terminal line.
// Progress ticks are only shown on whole minutes.
func renderEvent(e monitor.Event) string {
	stamp := e.At.Format("15:04:05")
	switch e.Type {
	case monitor.EventStateChange:
		if e.Active {
			return fmt.Sprintf("%s %s", stamp, color.GreenString("monitoring on"))
		}
		return fmt.Sprintf("%s %s", stamp, color.YellowString("monitoring off"))
	case monitor.EventSample:
		if e.Sample == nil {
			return ""
		}
		return fmt.Sprintf("%s score %s  %-10s %s", stamp, scoreString(e.Sample.ConcentrationScore),
			e.Sample.Posture, e.Sample.Feedback)
	case monitor.EventDiagnostic:
		return fmt.Sprintf("%s %s %s", stamp, color.RedString("!"), e.Message)
	case monitor.EventAlert:
		return fmt.Sprintf("%s %s %s", stamp, color.MagentaString(">>"), e.Message)
	case monitor.EventPhaseChange:
		if e.Pomodoro.IsOnBreak {
			return fmt.Sprintf("%s %s", stamp, color.CyanString("break time"))
		}
		return fmt.Sprintf("%s %s", stamp, color.CyanString("back to work"))
	case monitor.EventProgress:
		if e.Pomodoro.ElapsedSeconds == 0 || e.Pomodoro.ElapsedSeconds%60 != 0 {
			return ""
		}
		phase, limit := "work", e.Pomodoro.WorkSeconds
		if e.Pomodoro.IsOnBreak {
			phase, limit = "break", e.Pomodoro.WorkSeconds+e.Pomodoro.BreakSeconds
		}
		return fmt.Sprintf("%s %s %s left", stamp, phase, formatSeconds(limit-e.Pomodoro.ElapsedSeconds))
	default:
		return ""
	}
}

func renderReport(s domain.StoredSession) string {
	var sb strings.Builder
	sb.WriteString(color.CyanString("Session Report\n"))
	fmt.Fprintf(&sb, "  Average score: %s\n", scoreString(s.AverageScore))
	fmt.Fprintf(&sb, "  Duration:      %s\n", formatSeconds(s.TotalDurationSeconds))
	fmt.Fprintf(&sb, "  Distractions:  %d\n", s.DistractionCount)
	sb.WriteString("  Posture:\n")
	for _, p := range domain.AllPostures {
		fmt.Fprintf(&sb, "    %-10s %d\n", p, s.PostureStats[p])
	}
	fmt.Fprintf(&sb, "  Coins earned:  %s\n", color.YellowString("+%d", s.EarnedCoins))
	if s.AIComment != "" {
		fmt.Fprintf(&sb, "\n  %s\n", s.AIComment)
	}
	return sb.String()
}

func renderHistory(sessions []domain.StoredSession) string {
	if len(sessions) == 0 {
		return "No sessions recorded yet.\n"
	}
	var sb strings.Builder
	sb.WriteString(color.CyanString("Recent Sessions\n"))
	for _, s := range sessions {
		fmt.Fprintf(&sb, "  %s  score %s  %s  %d distractions  %s\n",
			s.CreatedAt.Local().Format(timeLayout), scoreString(s.AverageScore),
			formatSeconds(s.TotalDurationSeconds), s.DistractionCount,
			color.YellowString("+%d", s.EarnedCoins))
	}
	return sb.String()
}

func renderWallet(profile domain.Profile, registry *catalog.Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Coins: %s\n", color.YellowString("%d", profile.TotalCoins))
	fmt.Fprintf(&sb, "Active voice: %s\n", registry.Voice(profile.ActiveVoiceID).Name())
	if item, ok := registry.Get(profile.ActiveThemeID); ok {
		fmt.Fprintf(&sb, "Active theme: %s\n", item.Name())
	}
	sb.WriteString("Owned:\n")
	for _, id := range profile.UnlockedItemIDs {
		if item, ok := registry.Get(id); ok {
			fmt.Fprintf(&sb, "  - %s (%s)\n", item.Name(), item.Kind())
		}
	}
	return sb.String()
}

func renderShop(registry *catalog.Registry, profile domain.Profile) string {
	var sb strings.Builder
	sections := []struct {
		title string
		kind  catalog.Kind
	}{
		{"Voices", catalog.KindVoice},
		{"Themes", catalog.KindTheme},
	}
	for _, section := range sections {
		sb.WriteString(color.CyanString("%s\n", section.title))
		for _, item := range registry.ByKind(section.kind) {
			status := fmt.Sprintf("%d coins", item.Price())
			switch {
			case item.ID() == profile.ActiveVoiceID || item.ID() == profile.ActiveThemeID:
				status = color.GreenString("active")
			case profile.IsUnlocked(item.ID()):
				status = color.GreenString("owned")
			case item.Price() > profile.TotalCoins:
				status = color.RedString("%d coins", item.Price())
			}
			fmt.Fprintf(&sb, "  %-10s %-16s %s\n", item.ID(), item.Name(), status)
		}
	}
	return sb.String()
}
