package shortcut

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/franz/steam-icon-janitor/internal/catalog"
	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/steam"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// steam://<verb>/<appId>, e.g. steam://rungameid/730
var launchURLPattern = regexp.MustCompile(`(?i)^` + steam.URIScheme + `://[a-z]+/(\d+)/?$`)

// Target is a descriptor that launches a Steam app
type Target struct {
	Descriptor *Descriptor
	AppID      string
}

// Classify returns the app id of a Steam descriptor; ok is false when the
// descriptor does not launch a Steam app
func Classify(d *Descriptor) (appID string, ok bool) {
	m := launchURLPattern.FindStringSubmatch(strings.TrimSpace(d.URL()))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Rewriter reads, rewrites and recreates .url descriptors
type Rewriter struct {
	fs     afero.Fs
	logger *report.EventLogger
}

// Config holds rewriter configuration
type Config struct {
	Fs     afero.Fs
	Logger *report.EventLogger
}

// NewRewriter creates a Rewriter
func NewRewriter(cfg *Config) *Rewriter {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	return &Rewriter{fs: cfg.Fs, logger: cfg.Logger}
}

// Read loads the descriptor at path
func (r *Rewriter) Read(path string) (*Descriptor, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, util.ErrIO)
	}
	return Parse(path, data), nil
}

// Scan lists Steam targets among the .url files directly inside dir.
// Unreadable files are skipped.
func (r *Rewriter) Scan(dir string) ([]Target, error) {
	paths, err := r.list(dir)
	if err != nil {
		return nil, err
	}

	var targets []Target
	for _, path := range paths {
		d, err := r.Read(path)
		if err != nil {
			util.WarnLog("Skipping shortcut %s: %v", path, err)
			continue
		}
		appID, ok := Classify(d)
		if !ok {
			util.DebugLog("Not a Steam shortcut: %s", path)
			continue
		}
		targets = append(targets, Target{Descriptor: d, AppID: appID})
	}
	return targets, nil
}

// Normalize points d at iconPath with index 0 and writes it back when the
// content differs. It reports whether the file changed.
func (r *Rewriter) Normalize(d *Descriptor, iconPath string) (bool, error) {
	before := d.Bytes()
	d.Set(keyIconFile, iconPath)
	d.Set(keyIconIndex, "0")
	after := d.Bytes()

	changed := !bytes.Equal(before, after)
	appID, _ := Classify(d)

	if changed {
		if err := r.write(d.Path, after); err != nil {
			return false, err
		}
		util.DebugLog("Rewrote icon of %s -> %s", d.Path, iconPath)
	}

	r.logger.LogShortcut(appID, d.Path, iconPath, changed)
	return changed, nil
}

// NeedsNormalize reports whether Normalize would change d
func NeedsNormalize(d *Descriptor, iconPath string) bool {
	return d.IconFile() != iconPath || d.IconIndex() != "0"
}

// SteamDescriptors returns every descriptor directly inside dir whose URL
// uses the Steam scheme, including non-game URLs such as steam://open/games
func (r *Rewriter) SteamDescriptors(dir string) ([]*Descriptor, error) {
	paths, err := r.list(dir)
	if err != nil {
		return nil, err
	}

	var found []*Descriptor
	for _, path := range paths {
		d, err := r.Read(path)
		if err != nil {
			util.WarnLog("Skipping shortcut %s: %v", path, err)
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(d.URL())), steam.URIScheme+"://") {
			found = append(found, d)
		}
	}
	return found, nil
}

// DeleteAll removes every Steam descriptor directly inside dir and returns
// the deleted file names, sorted
func (r *Rewriter) DeleteAll(dir string) ([]string, error) {
	descriptors, err := r.SteamDescriptors(dir)
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, d := range descriptors {
		if err := r.fs.Remove(d.Path); err != nil {
			util.WarnLog("Failed to delete shortcut %s: %v", d.Path, err)
			continue
		}
		r.logger.LogDelete(d.Path)
		deleted = append(deleted, filepath.Base(d.Path))
	}

	sort.Strings(deleted)
	return deleted, nil
}

// Create writes a fresh descriptor for game into dir, replacing any file of
// the same name. It returns the descriptor path.
func (r *Rewriter) Create(game catalog.Game, dir, storeDir string) (string, error) {
	return r.CreateNamed(game, dir, FileName(game), storeDir)
}

// CreateNamed is Create with an explicit file name, as assigned by FileNames
func (r *Rewriter) CreateNamed(game catalog.Game, dir, name, storeDir string) (string, error) {
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %v: %w", dir, err, util.ErrIO)
	}

	path := filepath.Join(dir, name)
	d := Fresh(path, game, storeDir)

	if err := r.write(path, d.Bytes()); err != nil {
		return "", err
	}
	r.logger.LogCreate(game.AppID, path)
	return path, nil
}

// Fresh returns the descriptor Create writes for game at path
func Fresh(path string, game catalog.Game, storeDir string) *Descriptor {
	return New(path, game.LaunchURL(), icons.IconPath(storeDir, game.AppID))
}

// Path returns where Create would place the descriptor for game
func Path(game catalog.Game, dir string) string {
	return filepath.Join(dir, FileName(game))
}

// FileNames assigns every game a descriptor file name that is unique within
// one directory, keyed by app id. Names are compared case-insensitively; a
// later game whose name collides with an earlier one gains " (<appId>)".
func FileNames(games []catalog.Game) map[string]string {
	names := make(map[string]string, len(games))
	used := make(map[string]bool, len(games))
	for _, g := range games {
		name := FileName(g)
		if used[strings.ToLower(name)] {
			name = strings.TrimSuffix(name, Ext) + " (" + g.AppID + ")" + Ext
		}
		used[strings.ToLower(name)] = true
		names[g.AppID] = name
	}
	return names
}

func (r *Rewriter) list(dir string) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, util.ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %v: %w", dir, err, util.ErrIO)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func (r *Rewriter) write(path string, data []byte) error {
	tempPath := path + ".part"
	if err := afero.WriteFile(r.fs, tempPath, data, 0644); err != nil {
		r.fs.Remove(tempPath)
		return fmt.Errorf("write %s: %v: %w", path, err, util.ErrIO)
	}
	if err := r.fs.Rename(tempPath, path); err != nil {
		r.fs.Remove(tempPath)
		return fmt.Errorf("rename %s: %v: %w", path, err, util.ErrIO)
	}
	return nil
}

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// FileName returns the descriptor file name for game, safe on every
// filesystem and NFC normalized
func FileName(game catalog.Game) string {
	name := norm.NFC.String(game.Name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		}
		b.WriteRune(r)
	}

	safe := strings.TrimRight(strings.TrimSpace(b.String()), ". ")
	if safe == "" {
		safe = "Steam App " + game.AppID
	}
	if reservedNames[strings.ToUpper(safe)] {
		safe += " (" + game.AppID + ")"
	}
	return safe + Ext
}
