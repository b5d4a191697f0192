//go:build windows

package steam

import (
	"os"
	"path/filepath"
)

var launcherExecutables = []string{"steam.exe"}

// defaultInstallDirs returns the conventional install locations on Windows.
func defaultInstallDirs() []string {
	dirs := []string{}
	for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles"} {
		if v := os.Getenv(env); v != "" {
			dirs = append(dirs, filepath.Join(v, "Steam"))
		}
	}
	return append(dirs,
		`C:\Program Files (x86)\Steam`,
		`C:\Program Files\Steam`,
		`C:\Steam`,
		`D:\Steam`,
		`D:\Program Files (x86)\Steam`,
	)
}
