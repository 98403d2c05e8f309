package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	p := ResolvePaths("/tmp/fc")

	assert.Equal(t, "/tmp/fc", p.DataDir)
	assert.Equal(t, "/tmp/fc/settings.yaml", p.SettingsPath)
	assert.Equal(t, "/tmp/fc/focuscam.log", p.LogPath)
	assert.Equal(t, "/tmp/fc/focuscam.pid", p.PIDPath)
	assert.Equal(t, "/tmp/fc/store.key", p.KeyPath)
	assert.Equal(t, "/tmp/fc/focuscam.db", p.StorePath)
	assert.Equal(t, NewFileKeyProvider("/tmp/fc").Path(), p.KeyPath)
}

func TestResolvePaths_DefaultsToHome(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p := ResolvePaths("")

	assert.Equal(t, filepath.Join(home, ".focuscam"), p.DataDir)
}

func TestPaths_Ensure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	require.NoError(t, ResolvePaths(dir).Ensure())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
