package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettings_Fields(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		expect func(*Settings)
	}{
		{
			name: "all valid",
			body: "interval_ms: 3000\nalert_threshold: 3\nwork_minutes: 50\nbreak_minutes: 10\njpeg_quality: 85\nmax_frame_width: 320\ncapture_command: imagesnap -\n",
			expect: func(s *Settings) {
				s.Interval = 3 * time.Second
				s.AlertThreshold = 3
				s.Work = 50 * time.Minute
				s.Break = 10 * time.Minute
				s.JPEGQuality = 85
				s.MaxFrameWidth = 320
				s.CaptureCommand = "imagesnap -"
			},
		},
		{
			name:   "interval outside allowed set ignored",
			body:   "interval_ms: 4000\nalert_threshold: 1\n",
			expect: func(s *Settings) { s.AlertThreshold = 1 },
		},
		{
			name:   "out of range values ignored individually",
			body:   "alert_threshold: 7\nwork_minutes: 0\nbreak_minutes: 500\njpeg_quality: 101\nmax_frame_width: 10\ninterval_ms: 10000\n",
			expect: func(s *Settings) { s.Interval = 10 * time.Second },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := DefaultSettings()
			tt.expect(&want)

			got, err := LoadSettings(writeSettings(t, tt.body))

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadSettings_MalformedYAML(t *testing.T) {
	settings, err := LoadSettings(writeSettings(t, "interval_ms: [oops"))

	assert.Error(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSaveSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	settings := DefaultSettings()
	settings.Interval = 10 * time.Second
	settings.Work = 45 * time.Minute
	settings.PlayerCommand = "afplay"

	require.NoError(t, SaveSettings(path, settings))
	loaded, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSettings_MonitorConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.Interval = 3 * time.Second
	settings.AlertThreshold = 1
	settings.Break = 2 * time.Minute

	config := settings.MonitorConfig()

	assert.Equal(t, 3*time.Second, config.Scheduler.Interval)
	assert.Equal(t, 1, config.Scheduler.Debouncer.Threshold)
	assert.Equal(t, 25*time.Minute, config.Pomodoro.Work)
	assert.Equal(t, 2*time.Minute, config.Pomodoro.Break)
	assert.Equal(t, 60*time.Second, config.Scheduler.BackoffDelay)
}
