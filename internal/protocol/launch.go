package protocol

import (
	"fmt"
	"os/exec"
	"syscall"

	"github.com/mattn/go-shellwords"
)

// Launcher starts an application command line
type Launcher interface {
	Launch(argv []string) error
}

// SplitCommand splits a descriptor's BIN value with shell word rules.
// Environment variables are not expanded.
func SplitCommand(line string) ([]string, error) {
	argv, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return argv, nil
}

// ExecLauncher starts processes in their own session with no access to
// the control channel
type ExecLauncher struct{}

// Launch starts argv and reaps it in the background
func (ExecLauncher) Launch(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	go cmd.Wait()
	return nil
}
