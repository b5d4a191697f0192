package shell

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessControl is the process surface a flush needs
type ProcessControl interface {
	// Find returns the pids of processes whose image name matches, case-insensitively
	Find(ctx context.Context, name string) ([]int32, error)
	Kill(ctx context.Context, pid int32) error
	// WaitExit blocks until pid is gone or ctx is done
	WaitExit(ctx context.Context, pid int32) error
	// Run spawns name and waits for it to exit
	Run(ctx context.Context, name string, args ...string) error
	// Start spawns name without waiting
	Start(name string, args ...string) error
}

const exitPollInterval = 100 * time.Millisecond

// SystemProcesses implements ProcessControl with gopsutil and os/exec
type SystemProcesses struct{}

// NewSystemProcesses returns the OS process controller
func NewSystemProcesses() *SystemProcesses {
	return &SystemProcesses{}
}

// Find lists matching processes
func (SystemProcesses) Find(ctx context.Context, name string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	var pids []int32
	for _, p := range procs {
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue // exited or inaccessible
		}
		if strings.EqualFold(n, name) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// Kill terminates pid
func (SystemProcesses) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil // already gone
	}
	return p.KillWithContext(ctx)
}

// WaitExit polls until pid disappears
func (SystemProcesses) WaitExit(ctx context.Context, pid int32) error {
	ticker := time.NewTicker(exitPollInterval)
	defer ticker.Stop()

	for {
		exists, err := process.PidExistsWithContext(ctx, pid)
		if err == nil && !exists {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for pid %d: %w", pid, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Run executes name and waits
func (SystemProcesses) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)
	return cmd.Run()
}

// Start launches name detached from ctx
func (SystemProcesses) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
