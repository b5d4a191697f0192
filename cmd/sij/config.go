package main

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (SIJ_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val <= 0 {
		return defaultValue
	}
	return val
}

// GetConfigDuration retrieves a duration config value
func GetConfigDuration(key string, defaultValue time.Duration) time.Duration {
	val := viper.GetDuration(key)
	if val <= 0 {
		return defaultValue
	}
	return val
}

// GetConfigStringSlice retrieves a string slice config value
func GetConfigStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// configuredProvider parses the provider key
func configuredProvider() (icons.Provider, error) {
	return icons.ParseProvider(viper.GetString("provider"))
}

// stateDir is where the run history lives when --db is not set
func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "steam-icon-janitor")
	}
	return "."
}

// dbPath resolves --db / SIJ_DB
func dbPath() string {
	return GetConfigString("db", filepath.Join(stateDir(), store.DefaultFileName))
}

// shortcutDirs returns the configured shortcut directories, defaulting to
// the user's desktop and the Steam start-menu folder
func shortcutDirs() []string {
	if dirs := GetConfigStringSlice("shortcut_dirs"); len(dirs) > 0 {
		return dirs
	}
	return defaultShortcutDirs()
}

func defaultShortcutDirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Desktop"))
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			dirs = append(dirs, filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", "Steam"))
		}
		if public := os.Getenv("PUBLIC"); public != "" {
			dirs = append(dirs, filepath.Join(public, "Desktop"))
		}
	}
	if len(dirs) == 0 {
		util.WarnLog("No shortcut directories configured (set shortcut_dirs)")
	}
	return dirs
}
