package infra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// CommandRunner abstracts command execution for testing
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealCommandRunner executes real system commands
type RealCommandRunner struct{}

// Run executes a command and waits for it to complete
func (r *RealCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output executes a command and returns its stdout
func (r *RealCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// DefaultSpeechCommand returns the platform text-to-speech command.
func DefaultSpeechCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// DefaultPlayerCommand returns the platform audio player command.
func DefaultPlayerCommand() string {
	if runtime.GOOS == "darwin" {
		return "afplay"
	}
	return "ffplay -nodisp -autoexit -loglevel quiet"
}

// splitCommand splits a configured command line into name and arguments.
func splitCommand(command string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	return fields[0], fields[1:], nil
}

// LocalTTS implements domain.LocalSpeaker with an on-device speech command.
type LocalTTS struct {
	command string
	runner  CommandRunner
}

// NewLocalTTS creates a speaker using command ("say", "espeak", ...).
func NewLocalTTS(command string) *LocalTTS {
	return NewLocalTTSWithRunner(command, &RealCommandRunner{})
}

// NewLocalTTSWithRunner creates a speaker with an injected runner (for testing).
func NewLocalTTSWithRunner(command string, runner CommandRunner) *LocalTTS {
	if command == "" {
		command = DefaultSpeechCommand()
	}
	return &LocalTTS{command: command, runner: runner}
}

// Say speaks text and waits until it finishes.
func (s *LocalTTS) Say(ctx context.Context, text string) error {
	name, args, err := splitCommand(s.command)
	if err != nil {
		return err
	}
	if err := s.runner.Run(ctx, name, append(args, text)...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

// AudioPlayer plays an encoded audio clip.
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte) error
}

// CommandPlayer plays audio by writing it to a temp file and handing the
// path to a player command.
type CommandPlayer struct {
	command string
	runner  CommandRunner
}

// NewCommandPlayer creates a player using command ("afplay", "ffplay ...").
func NewCommandPlayer(command string) *CommandPlayer {
	return NewCommandPlayerWithRunner(command, &RealCommandRunner{})
}

// NewCommandPlayerWithRunner creates a player with an injected runner (for testing).
func NewCommandPlayerWithRunner(command string, runner CommandRunner) *CommandPlayer {
	if command == "" {
		command = DefaultPlayerCommand()
	}
	return &CommandPlayer{command: command, runner: runner}
}

// Play writes audio to a temp file, plays it and removes the file.
func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("empty audio clip")
	}
	name, args, err := splitCommand(p.command)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "focuscam-speech-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	if err := p.runner.Run(ctx, name, append(args, path)...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

var _ domain.LocalSpeaker = (*LocalTTS)(nil)
