// Package steam locates a local Steam installation and its content libraries.
package steam

import (
	"fmt"
	"path/filepath"

	"github.com/franz/steam-icon-janitor/internal/util"
)

// ErrSteamNotFound is returned when no installation root can be located.
var ErrSteamNotFound = fmt.Errorf("steam installation %w", util.ErrNotFound)

// URIScheme is the launcher's own URI scheme used by launch shortcuts.
const URIScheme = "steam"

// MainLibraryLabel is the label of the library rooted at the installation.
const MainLibraryLabel = "Main"

// Installation is the launcher's root install directory.
type Installation struct {
	Path   string
	Source string // which probe found it, for diagnostics

	userID string
}

// NewInstallation creates an Installation at a known path, e.g. from a
// --steam-path override.
func NewInstallation(path, userID string) Installation {
	return Installation{Path: path, Source: "override", userID: userID}
}

// UserID returns the active Steam user id, if one was discovered.
func (i Installation) UserID() (string, bool) {
	return i.userID, i.userID != ""
}

// SteamAppsDir returns the content-metadata directory of the main library.
func (i Installation) SteamAppsDir() string {
	return filepath.Join(i.Path, "steamapps")
}

// LibraryFoldersPath returns the library-folder registry file.
func (i Installation) LibraryFoldersPath() string {
	return filepath.Join(i.SteamAppsDir(), "libraryfolders.vdf")
}

// IconStoreDir returns the managed icon store of this installation.
func (i Installation) IconStoreDir() string {
	return filepath.Join(i.Path, "steam", "games")
}

// UserDataDir returns the per-user data directory.
func (i Installation) UserDataDir() string {
	return filepath.Join(i.Path, "userdata")
}

// Library is one content-storage root.
type Library struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// SteamAppsDir returns where the library keeps its manifests.
func (l Library) SteamAppsDir() string {
	return filepath.Join(l.Path, "steamapps")
}

// CommonDir returns where the library keeps installed game folders.
func (l Library) CommonDir() string {
	return filepath.Join(l.SteamAppsDir(), "common")
}
