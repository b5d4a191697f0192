// Package catalog enumerates installed games from Steam app manifests.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/steam"
	"github.com/franz/steam-icon-janitor/internal/util"
)

const manifestGlob = "appmanifest_*.acf"

var (
	manifestNamePattern = regexp.MustCompile(`^appmanifest_(\d+)\.acf$`)
	nameField           = regexp.MustCompile(`(?im)^\s*"name"\s+"([^"]*)"`)
	installDirField     = regexp.MustCompile(`(?im)^\s*"installdir"\s+"([^"]*)"`)
	sizeField           = regexp.MustCompile(`(?im)^\s*"SizeOnDisk"\s+"(\d+)"`)
)

// Game is one installed application.
type Game struct {
	AppID       string `json:"appId"`
	Name        string `json:"name"`
	InstallDir  string `json:"installDir"`
	LibraryPath string `json:"libraryPath"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// InstallPath returns the absolute install folder of the game.
func (g Game) InstallPath() string {
	return filepath.Join(g.LibraryPath, "steamapps", "common", g.InstallDir)
}

// LaunchURL returns the canonical launch URL of the game.
func (g Game) LaunchURL() string {
	return fmt.Sprintf("%s://rungameid/%s", steam.URIScheme, g.AppID)
}

// Catalog scans libraries for manifests
type Catalog struct {
	fs     afero.Fs
	logger *report.EventLogger
}

// Config holds catalog configuration
type Config struct {
	Fs     afero.Fs
	Logger *report.EventLogger
}

// New creates a new Catalog
func New(cfg *Config) *Catalog {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	return &Catalog{fs: cfg.Fs, logger: cfg.Logger}
}

// Scan returns the games of all libraries, deduplicated by app id with the
// first library in scan order winning, sorted by name (ordinal).
// Unreadable directories and malformed manifests are skipped.
func (c *Catalog) Scan(libraries []steam.Library) []Game {
	seen := make(map[string]bool)
	games := make([]Game, 0)
	skipped := 0

	for _, lib := range libraries {
		matches, err := afero.Glob(c.fs, filepath.Join(lib.SteamAppsDir(), manifestGlob))
		if err != nil {
			util.WarnLog("Catalog: cannot list %s: %v", lib.SteamAppsDir(), err)
			continue
		}
		sort.Strings(matches)

		for _, path := range matches {
			m := manifestNamePattern.FindStringSubmatch(filepath.Base(path))
			if m == nil {
				continue
			}
			appID := m[1]
			if seen[appID] {
				util.DebugLog("Catalog: %s already cataloged, ignoring %s", appID, path)
				continue
			}

			game, err := c.readManifest(path, appID, lib)
			if err != nil {
				util.DebugLog("Catalog: skipping %s: %v", path, err)
				skipped++
				continue
			}

			seen[appID] = true
			games = append(games, game)
		}
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Name < games[j].Name
	})

	util.DebugLog("Catalog: %d games, %d manifests skipped", len(games), skipped)
	c.logger.LogCatalog(len(libraries), len(games), skipped)

	return games
}

func (c *Catalog) readManifest(path, appID string, lib steam.Library) (Game, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return Game{}, fmt.Errorf("read manifest: %w", err)
	}

	name := firstMatch(nameField, data)
	if name == "" {
		return Game{}, fmt.Errorf("manifest has no name: %w", util.ErrParse)
	}

	game := Game{
		AppID:       appID,
		Name:        name,
		InstallDir:  firstMatch(installDirField, data),
		LibraryPath: lib.Path,
		SizeBytes:   -1,
	}

	if s := firstMatch(sizeField, data); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			game.SizeBytes = n
		}
	}
	if game.SizeBytes < 0 && game.InstallDir != "" {
		game.SizeBytes = c.dirSize(game.InstallPath())
	}

	return game, nil
}

// dirSize aggregates file sizes below dir, or -1 when dir is unreadable.
func (c *Catalog) dirSize(dir string) int64 {
	var total int64
	err := afero.Walk(c.fs, dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return -1
	}
	return total
}

func firstMatch(re *regexp.Regexp, data []byte) string {
	m := re.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}
