package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// mockChecker implements ProcessChecker for testing
type mockChecker struct {
	alive map[int]bool
	err   error
}

func (m *mockChecker) PidExists(pid int) (bool, error) {
	return m.alive[pid], m.err
}

func TestInstanceGuard_Acquire(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		alive    map[int]bool
		checkErr error
		wantErr  error
		wantFail bool
	}{
		{name: "no pid file"},
		{name: "stale pid file", existing: "4242", alive: map[int]bool{4242: false}},
		{name: "garbage pid file", existing: "not-a-pid"},
		{name: "own pid file", existing: "100"},
		{name: "live owner", existing: "4242", alive: map[int]bool{4242: true}, wantErr: domain.ErrAlreadyRunning, wantFail: true},
		{name: "checker error", existing: "4242", checkErr: errors.New("boom"), wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pidPath := filepath.Join(t.TempDir(), "run", "focuscam.pid")
			if tt.existing != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(pidPath), 0700))
				require.NoError(t, os.WriteFile(pidPath, []byte(tt.existing), 0600))
			}
			guard := NewInstanceGuardWithChecker(pidPath, &mockChecker{alive: tt.alive, err: tt.checkErr}, 100)

			err := guard.Acquire()

			if tt.wantFail {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				data, _ := os.ReadFile(pidPath)
				assert.Equal(t, tt.existing, string(data), "pid file untouched")
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(pidPath)
			require.NoError(t, err)
			assert.Equal(t, "100", string(data))
		})
	}
}

func TestInstanceGuard_Release(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "focuscam.pid")
	checker := &mockChecker{alive: map[int]bool{100: true}}

	guard := NewInstanceGuardWithChecker(pidPath, checker, 100)
	require.NoError(t, guard.Acquire())

	owner, ok := guard.Owner()
	assert.True(t, ok)
	assert.Equal(t, 100, owner)

	other := NewInstanceGuardWithChecker(pidPath, checker, 200)
	require.NoError(t, other.Release())
	assert.FileExists(t, pidPath, "foreign release leaves the file")

	require.NoError(t, guard.Release())
	assert.NoFileExists(t, pidPath)
	require.NoError(t, guard.Release())

	_, ok = guard.Owner()
	assert.False(t, ok)
}

func TestGopsutilChecker_CurrentProcess(t *testing.T) {
	alive, err := GopsutilChecker{}.PidExists(os.Getpid())
	require.NoError(t, err)
	assert.True(t, alive)
}
