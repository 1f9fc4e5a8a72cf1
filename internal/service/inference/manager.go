// Package inference manages the lifecycle of an optional locally
// hosted inference server (for setups that run the model on the same
// machine instead of a remote endpoint).
package inference

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// Manager starts and stops a local inference process by command name.
// A zero command disables management entirely.
type Manager struct {
	command string
}

// NewManager returns a manager for the given executable.
func NewManager(command string) *Manager {
	return &Manager{command: strings.TrimSpace(command)}
}

// Enabled reports whether a command was configured.
func (m *Manager) Enabled() bool { return m.command != "" }

// IsRunning checks for a live process matching the command.
func (m *Manager) IsRunning() bool {
	if !m.Enabled() {
		return false
	}
	out, err := exec.Command("pgrep", "-f", m.command).Output()
	if err != nil {
		// pgrep exits non-zero when nothing matches.
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// Start launches the inference server in the background and gives it a
// few seconds to initialize.
func (m *Manager) Start() error {
	if !m.Enabled() {
		return nil
	}
	cmd := exec.Command(m.command, "serve")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", m.command, err)
	}
	log.Printf("[inference] started %s (pid %d), waiting for it to initialize", m.command, cmd.Process.Pid)
	time.Sleep(5 * time.Second)
	return nil
}

// EnsureRunning starts the server if it is not already up.
func (m *Manager) EnsureRunning() error {
	if !m.Enabled() || m.IsRunning() {
		return nil
	}
	log.Printf("[inference] %s is not running, attempting to start it", m.command)
	return m.Start()
}

// Stop terminates the managed process. Failure to stop is logged, not
// fatal: the process may already be gone.
func (m *Manager) Stop() {
	if !m.Enabled() {
		return
	}
	if err := exec.Command("pkill", "-f", m.command).Run(); err != nil {
		log.Printf("[inference] could not stop %s: %v", m.command, err)
	}
}
