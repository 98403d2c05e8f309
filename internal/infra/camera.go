package infra

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// DefaultCaptureCommand returns a command printing one camera frame to stdout.
func DefaultCaptureCommand() string {
	if runtime.GOOS == "darwin" {
		return "imagesnap -q -w 1 -"
	}
	return "ffmpeg -loglevel quiet -f v4l2 -i /dev/video0 -frames:v 1 -f image2pipe -vcodec mjpeg -"
}

// CommandFrameSource implements domain.FrameSource by running a capture
// command that writes a JPEG or PNG frame to stdout.
type CommandFrameSource struct {
	command string
	runner  CommandRunner
}

// NewCommandFrameSource creates a frame source for command.
func NewCommandFrameSource(command string) *CommandFrameSource {
	return NewCommandFrameSourceWithRunner(command, &RealCommandRunner{})
}

// NewCommandFrameSourceWithRunner creates a frame source with an injected runner (for testing).
func NewCommandFrameSourceWithRunner(command string, runner CommandRunner) *CommandFrameSource {
	if command == "" {
		command = DefaultCaptureCommand()
	}
	return &CommandFrameSource{command: command, runner: runner}
}

// Capture grabs one frame. Empty output means the device is still warming up.
func (c *CommandFrameSource) Capture(ctx context.Context) (image.Image, error) {
	name, args, err := splitCommand(c.command)
	if err != nil {
		return nil, err
	}
	out, err := c.runner.Output(ctx, name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	if len(out) == 0 {
		return nil, domain.ErrFrameNotReady
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// FileFrameSource replays a still image, for demos and offline checks.
type FileFrameSource struct {
	path string
}

// NewFileFrameSource creates a frame source reading path on every capture.
func NewFileFrameSource(path string) *FileFrameSource {
	return &FileFrameSource{path: path}
}

// Capture reads and decodes the image file.
func (f *FileFrameSource) Capture(ctx context.Context) (image.Image, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrFrameNotReady
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

var (
	_ domain.FrameSource = (*CommandFrameSource)(nil)
	_ domain.FrameSource = (*FileFrameSource)(nil)
)
