//go:build !windows

package steam

import (
	"path/filepath"
)

var launcherExecutables = []string{"steam.sh", "steam"}

// defaultInstallDirs returns the conventional install locations on Linux/Unix.
func defaultInstallDirs() []string {
	home := homeDir()
	if home == "" {
		return nil
	}
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
	}
}
