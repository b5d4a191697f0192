//go:build windows

package shell

import "os"

// DefaultPlan returns the Explorer flush plan for the current user
func DefaultPlan() Plan {
	return Plan{
		ShellProcess:  "explorer.exe",
		RebuildHelper: "ie4uinit.exe",
		RebuildArgs:   []string{"-show"},
		CacheFiles:    explorerCacheFiles(os.Getenv("LOCALAPPDATA")),
	}
}
