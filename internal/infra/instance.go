package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// ProcessChecker reports whether a PID belongs to a live process.
type ProcessChecker interface {
	PidExists(pid int) (bool, error)
}

// GopsutilChecker implements ProcessChecker using gopsutil.
type GopsutilChecker struct{}

// PidExists checks the process table.
func (GopsutilChecker) PidExists(pid int) (bool, error) {
	return process.PidExists(int32(pid))
}

// InstanceGuard keeps a single monitoring session per data directory
// by holding a pid file for the lifetime of the run command.
type InstanceGuard struct {
	pidPath string
	checker ProcessChecker
	pid     int
}

// NewInstanceGuard creates a guard for pidPath.
func NewInstanceGuard(pidPath string) *InstanceGuard {
	return NewInstanceGuardWithChecker(pidPath, GopsutilChecker{}, os.Getpid())
}

// NewInstanceGuardWithChecker creates a guard with injected dependencies (for testing).
func NewInstanceGuardWithChecker(pidPath string, checker ProcessChecker, pid int) *InstanceGuard {
	return &InstanceGuard{pidPath: pidPath, checker: checker, pid: pid}
}

// Acquire writes the pid file. A pid file naming another live process
// yields domain.ErrAlreadyRunning; a stale one is replaced.
func (g *InstanceGuard) Acquire() error {
	if owner, ok := g.readPID(); ok && owner != g.pid {
		alive, err := g.checker.PidExists(owner)
		if err != nil {
			return fmt.Errorf("failed to check pid %d: %w", owner, err)
		}
		if alive {
			return fmt.Errorf("%w (pid %d)", domain.ErrAlreadyRunning, owner)
		}
	}

	if err := os.MkdirAll(filepath.Dir(g.pidPath), 0700); err != nil {
		return fmt.Errorf("failed to create pid dir: %w", err)
	}
	if err := os.WriteFile(g.pidPath, []byte(strconv.Itoa(g.pid)), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// Release removes the pid file if this process still owns it.
func (g *InstanceGuard) Release() error {
	owner, ok := g.readPID()
	if !ok || owner != g.pid {
		return nil
	}
	if err := os.Remove(g.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	return nil
}

// Owner returns the pid recorded in the pid file when that process is alive.
func (g *InstanceGuard) Owner() (int, bool) {
	owner, ok := g.readPID()
	if !ok {
		return 0, false
	}
	alive, err := g.checker.PidExists(owner)
	if err != nil || !alive {
		return 0, false
	}
	return owner, true
}

func (g *InstanceGuard) readPID() (int, bool) {
	data, err := os.ReadFile(g.pidPath)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
