package steam

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/util"
)

// KeyValueStore is a registry-style configuration lookup.
type KeyValueStore interface {
	Get(scopePath, valueName string) (string, bool)
}

// Registry scopes probed by the Locator, in order.
const (
	Scope64Bit         = `HKLM\SOFTWARE\Wow6432Node\Valve\Steam`
	Scope32Bit         = `HKLM\SOFTWARE\Valve\Steam`
	ScopeUser          = `HKCU\Software\Valve\Steam`
	ScopeActiveProcess = `HKCU\Software\Valve\Steam\ActiveProcess`
)

type probe struct {
	scope, value, source string
	fromSlash            bool
}

var registryProbes = []probe{
	{Scope64Bit, "InstallPath", "registry (64-bit)", false},
	{Scope32Bit, "InstallPath", "registry (32-bit)", false},
	{ScopeUser, "SteamPath", "registry (user)", true},
}

// Locator finds the launcher's install root.
type Locator struct {
	fs          afero.Fs
	registry    KeyValueStore
	candidates  []string
	executables []string
}

// LocatorConfig holds locator configuration
type LocatorConfig struct {
	Fs          afero.Fs
	Registry    KeyValueStore
	Candidates  []string // conventional install dirs; nil = platform defaults
	Executables []string // launcher executables; nil = platform defaults
}

// NewLocator creates a Locator
func NewLocator(cfg *LocatorConfig) *Locator {
	if cfg == nil {
		cfg = &LocatorConfig{}
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Registry == nil {
		cfg.Registry = NewSystemRegistry()
	}
	if cfg.Candidates == nil {
		cfg.Candidates = defaultInstallDirs()
	}
	if cfg.Executables == nil {
		cfg.Executables = launcherExecutables
	}

	return &Locator{
		fs:          cfg.Fs,
		registry:    cfg.Registry,
		candidates:  cfg.Candidates,
		executables: cfg.Executables,
	}
}

// Locate returns the first valid installation root. Registry probes win over
// conventional paths; conventional paths also need a launcher executable.
func (l *Locator) Locate() (Installation, error) {
	for _, p := range registryProbes {
		path, ok := l.registry.Get(p.scope, p.value)
		if !ok || path == "" {
			continue
		}
		if p.fromSlash {
			path = filepath.FromSlash(path)
		}
		path = filepath.Clean(path)
		if !l.dirExists(path) {
			util.DebugLog("Locator: %s points at missing dir %s", p.source, path)
			continue
		}
		return l.installation(path, p.source), nil
	}

	for _, dir := range l.candidates {
		if !l.dirExists(dir) || !l.hasExecutable(dir) {
			continue
		}
		return l.installation(dir, "conventional path"), nil
	}

	return Installation{}, ErrSteamNotFound
}

func (l *Locator) installation(path, source string) Installation {
	inst := Installation{Path: path, Source: source}
	inst.userID = l.discoverUser(inst)
	util.DebugLog("Locator: found %s via %s", path, source)
	return inst
}

// discoverUser prefers the active user from the registry, then the first
// numeric userdata directory. "0" is Steam's placeholder, not a user.
func (l *Locator) discoverUser(inst Installation) string {
	if id, ok := l.registry.Get(ScopeActiveProcess, "ActiveUser"); ok && isUserID(id) {
		return id
	}

	entries, err := afero.ReadDir(l.fs, inst.UserDataDir())
	if err != nil {
		return ""
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && isUserID(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return ids[0]
}

func isUserID(s string) bool {
	n, err := strconv.ParseUint(s, 10, 64)
	return err == nil && n != 0
}

func (l *Locator) hasExecutable(dir string) bool {
	for _, exe := range l.executables {
		info, err := l.fs.Stat(filepath.Join(dir, exe))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func (l *Locator) dirExists(path string) bool {
	return dirExists(l.fs, path)
}

func dirExists(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}

// homeDir returns the user's home directory or "" when unknown.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
