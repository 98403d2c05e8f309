package infra

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommandRunner records commands for testing
type mockCommandRunner struct {
	runErr   error
	output   []byte
	outErr   error
	commands [][]string
	onRun    func(name string, args []string)
}

func (m *mockCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	m.commands = append(m.commands, append([]string{name}, args...))
	if m.onRun != nil {
		m.onRun(name, args)
	}
	return m.runErr
}

func (m *mockCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.commands = append(m.commands, append([]string{name}, args...))
	return m.output, m.outErr
}

func TestLocalTTS_Say(t *testing.T) {
	tests := []struct {
		name    string
		command string
		runErr  error
		want    []string
		wantErr bool
	}{
		{"say", "say", nil, []string{"say", "sit up"}, false},
		{"command with flags", "espeak -s 150", nil, []string{"espeak", "-s", "150", "sit up"}, false},
		{"command fails", "say", errors.New("exit 1"), []string{"say", "sit up"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockCommandRunner{runErr: tt.runErr}
			tts := NewLocalTTSWithRunner(tt.command, runner)

			err := tts.Say(context.Background(), "sit up")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, runner.commands, 1)
			assert.Equal(t, tt.want, runner.commands[0])
		})
	}
}

func TestLocalTTS_DefaultCommand(t *testing.T) {
	runner := &mockCommandRunner{}
	require.NoError(t, NewLocalTTSWithRunner("", runner).Say(context.Background(), "hi"))
	assert.Equal(t, DefaultSpeechCommand(), runner.commands[0][0])
}

func TestCommandPlayer_PlaysTempFileAndRemovesIt(t *testing.T) {
	var played string
	var content []byte
	runner := &mockCommandRunner{onRun: func(name string, args []string) {
		played = args[len(args)-1]
		content, _ = os.ReadFile(played)
	}}
	player := NewCommandPlayerWithRunner("ffplay -nodisp", runner)

	require.NoError(t, player.Play(context.Background(), []byte("ID3audio")))

	assert.Equal(t, []byte("ID3audio"), content)
	assert.Equal(t, []string{"ffplay", "-nodisp", played}, runner.commands[0])
	_, err := os.Stat(played)
	assert.True(t, os.IsNotExist(err), "temp file removed")
}

func TestCommandPlayer_RejectsEmptyClip(t *testing.T) {
	runner := &mockCommandRunner{}
	err := NewCommandPlayerWithRunner("afplay", runner).Play(context.Background(), nil)

	assert.Error(t, err)
	assert.Empty(t, runner.commands)
}
