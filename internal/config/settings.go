// Package config loads user settings from YAML and service endpoints from
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/focusd/focuscam/internal/infra"
	"github.com/eliteGoblin/focusd/focuscam/internal/monitor"
	"github.com/eliteGoblin/focusd/focuscam/internal/usecase"
)

const (
	MinPhaseMinutes = 1
	MaxPhaseMinutes = 120
	MinFrameWidth   = 160
)

// Settings holds the user-tunable behaviour of a session.
type Settings struct {
	Interval       time.Duration
	AlertThreshold int
	Work           time.Duration
	Break          time.Duration
	JPEGQuality    int
	MaxFrameWidth  int
	CaptureCommand string
	PlayerCommand  string
	SpeechCommand  string
}

type yamlSettings struct {
	IntervalMS     int    `yaml:"interval_ms"`
	AlertThreshold int    `yaml:"alert_threshold"`
	WorkMinutes    int    `yaml:"work_minutes"`
	BreakMinutes   int    `yaml:"break_minutes"`
	JPEGQuality    int    `yaml:"jpeg_quality"`
	MaxFrameWidth  int    `yaml:"max_frame_width"`
	CaptureCommand string `yaml:"capture_command,omitempty"`
	PlayerCommand  string `yaml:"player_command,omitempty"`
	SpeechCommand  string `yaml:"speech_command,omitempty"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Interval:       monitor.DefaultCaptureInterval,
		AlertThreshold: usecase.DefaultAlertThreshold,
		Work:           monitor.DefaultWorkDuration,
		Break:          monitor.DefaultBreakDuration,
		JPEGQuality:    infra.DefaultJPEGQuality,
		MaxFrameWidth:  infra.DefaultMaxFrameWidth,
	}
}

// LoadSettings reads settings from path.
// If the file does not exist, default settings are returned.
// Out-of-range fields keep their defaults individually.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes settings to path.
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		IntervalMS:     int(settings.Interval / time.Millisecond),
		AlertThreshold: settings.AlertThreshold,
		WorkMinutes:    int(settings.Work / time.Minute),
		BreakMinutes:   int(settings.Break / time.Minute),
		JPEGQuality:    settings.JPEGQuality,
		MaxFrameWidth:  settings.MaxFrameWidth,
		CaptureCommand: settings.CaptureCommand,
		PlayerCommand:  settings.PlayerCommand,
		SpeechCommand:  settings.SpeechCommand,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if interval := time.Duration(fileData.IntervalMS) * time.Millisecond; monitor.IsAllowedInterval(interval) {
		settings.Interval = interval
	}
	if fileData.AlertThreshold >= usecase.MinAlertThreshold && fileData.AlertThreshold <= usecase.MaxAlertThreshold {
		settings.AlertThreshold = fileData.AlertThreshold
	}
	if fileData.WorkMinutes >= MinPhaseMinutes && fileData.WorkMinutes <= MaxPhaseMinutes {
		settings.Work = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if fileData.BreakMinutes >= MinPhaseMinutes && fileData.BreakMinutes <= MaxPhaseMinutes {
		settings.Break = time.Duration(fileData.BreakMinutes) * time.Minute
	}
	if fileData.JPEGQuality >= 1 && fileData.JPEGQuality <= 100 {
		settings.JPEGQuality = fileData.JPEGQuality
	}
	if fileData.MaxFrameWidth >= MinFrameWidth {
		settings.MaxFrameWidth = fileData.MaxFrameWidth
	}

	settings.CaptureCommand = fileData.CaptureCommand
	settings.PlayerCommand = fileData.PlayerCommand
	settings.SpeechCommand = fileData.SpeechCommand
}

// MonitorConfig converts settings into the monitor's timing configuration.
func (s Settings) MonitorConfig() monitor.Config {
	config := monitor.DefaultConfig()
	config.Scheduler.Interval = s.Interval
	config.Scheduler.Debouncer.Threshold = s.AlertThreshold
	config.Pomodoro.Work = s.Work
	config.Pomodoro.Break = s.Break
	return config
}
