package infra

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

const (
	appDirName       = ".focuscam"
	settingsFileName = "settings.yaml"
	logFileName      = "focuscam.log"
	pidFileName      = "focuscam.pid"
)

// Paths holds the on-disk layout under the data directory.
type Paths struct {
	DataDir      string
	SettingsPath string
	LogPath      string
	PIDPath      string
	KeyPath      string
	StorePath    string
}

// ResolvePaths returns the layout rooted at dataDir, or at ~/.focuscam when empty.
func ResolvePaths(dataDir string) Paths {
	if dataDir == "" {
		dataDir = filepath.Join(GetRealUserHome(), appDirName)
	}
	return Paths{
		DataDir:      dataDir,
		SettingsPath: filepath.Join(dataDir, settingsFileName),
		LogPath:      filepath.Join(dataDir, logFileName),
		PIDPath:      filepath.Join(dataDir, pidFileName),
		KeyPath:      filepath.Join(dataDir, keyFileName),
		StorePath:    filepath.Join(dataDir, storeDBName),
	}
}

// Ensure creates the data directory with owner-only permissions.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	return nil
}

// GetRealUserHome returns the real user's home directory, even when running under sudo.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
