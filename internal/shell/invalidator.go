package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// DefaultTimeout bounds waiting for the shell to exit and for the rebuild helper
const DefaultTimeout = 20 * time.Second

// ErrUnsupported is returned when the platform has no flushable icon cache
var ErrUnsupported = errors.New("icon cache flush not supported on this platform")

// Invalidator flushes the OS icon cache. Flushing restarts the desktop
// shell, so callers must only run it on explicit user request.
type Invalidator struct {
	fs       afero.Fs
	procs    ProcessControl
	notifier Notifier
	plan     Plan
	timeout  time.Duration
	retry    *util.RetryConfig
	logger   *report.EventLogger
}

// Config holds invalidator configuration
type Config struct {
	Fs          afero.Fs
	Processes   ProcessControl
	Notifier    Notifier
	Plan        *Plan // nil = DefaultPlan()
	Timeout     time.Duration
	RetryConfig *util.RetryConfig
	Logger      *report.EventLogger
}

// NewInvalidator creates an Invalidator
func NewInvalidator(cfg *Config) *Invalidator {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Processes == nil {
		cfg.Processes = NewSystemProcesses()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NewSystemNotifier()
	}
	plan := DefaultPlan()
	if cfg.Plan != nil {
		plan = *cfg.Plan
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = util.LockedFileRetryConfig()
	}

	return &Invalidator{
		fs:       cfg.Fs,
		procs:    cfg.Processes,
		notifier: cfg.Notifier,
		plan:     plan,
		timeout:  cfg.Timeout,
		retry:    cfg.RetryConfig,
		logger:   cfg.Logger,
	}
}

// FlushResult summarizes a flush
type FlushResult struct {
	Killed    int
	Deleted   []string
	Failed    []string
	Rebuilt   bool
	Restarted bool
}

// Flush notifies, stops the shell, deletes cache files, runs the rebuild
// helper, restarts the shell and notifies again. Individual failures are
// logged and skipped; the shell is always relaunched.
func (inv *Invalidator) Flush(ctx context.Context) (*FlushResult, error) {
	if !inv.plan.Supported() {
		return nil, ErrUnsupported
	}

	result := &FlushResult{}
	util.InfoLog("Flushing icon cache (the desktop will restart)")

	inv.notifier.NotifyAssociationsChanged()
	inv.logger.LogFlush("notify", "", nil)

	result.Killed = inv.stopShell(ctx)

	for _, path := range inv.plan.CacheFiles {
		deleted, err := inv.deleteCacheFile(ctx, path)
		switch {
		case err != nil:
			util.WarnLog("Could not delete %s: %v", path, err)
			result.Failed = append(result.Failed, path)
			inv.logger.LogFlush("delete", path, err)
		case deleted:
			util.DebugLog("Deleted %s", path)
			result.Deleted = append(result.Deleted, path)
			inv.logger.LogFlush("delete", path, nil)
		}
	}

	if inv.plan.RebuildHelper != "" {
		helperCtx, cancel := context.WithTimeout(ctx, inv.timeout)
		err := inv.procs.Run(helperCtx, inv.plan.RebuildHelper, inv.plan.RebuildArgs...)
		cancel()
		if err != nil {
			util.WarnLog("%s failed: %v", inv.plan.RebuildHelper, err)
		} else {
			result.Rebuilt = true
		}
		inv.logger.LogFlush("rebuild", inv.plan.RebuildHelper, err)
	}

	// Relaunch even when ctx is done so the user is not left without a desktop
	if err := inv.procs.Start(inv.plan.ShellProcess); err != nil {
		util.ErrorLog("Failed to restart %s: %v", inv.plan.ShellProcess, err)
		inv.logger.LogFlush("restart", inv.plan.ShellProcess, err)
	} else {
		result.Restarted = true
		inv.logger.LogFlush("restart", inv.plan.ShellProcess, nil)
	}

	inv.notifier.NotifyAssociationsChanged()
	inv.logger.LogFlush("notify", "", nil)

	util.SuccessLog("Icon cache flushed: %d files deleted, %d locked", len(result.Deleted), len(result.Failed))
	return result, nil
}

// stopShell kills every shell instance and waits, bounded by the timeout
func (inv *Invalidator) stopShell(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	pids, err := inv.procs.Find(ctx, inv.plan.ShellProcess)
	if err != nil {
		util.WarnLog("Cannot list %s processes: %v", inv.plan.ShellProcess, err)
		inv.logger.LogFlush("kill", inv.plan.ShellProcess, err)
		return 0
	}

	killed := 0
	for _, pid := range pids {
		if err := inv.procs.Kill(ctx, pid); err != nil {
			util.WarnLog("Failed to stop %s (pid %d): %v", inv.plan.ShellProcess, pid, err)
			continue
		}
		if err := inv.procs.WaitExit(ctx, pid); err != nil {
			util.WarnLog("%s (pid %d) did not exit: %v", inv.plan.ShellProcess, pid, err)
		}
		killed++
	}

	inv.logger.LogFlush("kill", inv.plan.ShellProcess, nil)
	return killed
}

// deleteCacheFile clears the read-only bit and removes path, retrying while
// the file is locked. A missing file is not an error and reports false.
func (inv *Invalidator) deleteCacheFile(ctx context.Context, path string) (bool, error) {
	if _, err := inv.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%v: %w", err, util.ErrIO)
	}

	if err := inv.fs.Chmod(path, 0666); err != nil {
		util.DebugLog("Cannot clear read-only on %s: %v", path, err)
	}

	err := util.Retry(ctx, inv.retry, func() error {
		err := inv.fs.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}, "delete "+path)
	if err != nil {
		return false, fmt.Errorf("%v: %w", err, util.ErrIO)
	}
	return true, nil
}
