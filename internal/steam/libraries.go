package steam

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/util"
)

var libraryPathPattern = regexp.MustCompile(`(?i)"path"\s+"([^"]+)"`)

// LibraryResolver turns an installation into its ordered library roots.
type LibraryResolver struct {
	fs afero.Fs
}

// NewLibraryResolver creates a LibraryResolver reading through fs
func NewLibraryResolver(fs afero.Fs) *LibraryResolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LibraryResolver{fs: fs}
}

// Resolve returns the main library first, followed by every additional
// library registered in libraryfolders.vdf that exists on disk. A missing or
// unreadable registry file yields just the main library.
func (r *LibraryResolver) Resolve(inst Installation) []Library {
	libs := []Library{{Path: inst.Path, Label: MainLibraryLabel}}

	data, err := afero.ReadFile(r.fs, inst.LibraryFoldersPath())
	if err != nil {
		util.DebugLog("Libraries: no registry file at %s: %v", inst.LibraryFoldersPath(), err)
		return libs
	}

	for _, m := range libraryPathPattern.FindAllSubmatch(data, -1) {
		path := unescapeVDFPath(string(m[1]))
		if path == "" || containsFold(libs, path) {
			continue
		}
		if !dirExists(r.fs, path) {
			util.DebugLog("Libraries: skipping missing library %s", path)
			continue
		}
		libs = append(libs, Library{
			Path:  path,
			Label: fmt.Sprintf("Library %d", len(libs)),
		})
	}

	return libs
}

func unescapeVDFPath(p string) string {
	p = strings.ReplaceAll(p, `\\`, `\`)
	return filepath.Clean(filepath.FromSlash(p))
}

func containsFold(libs []Library, path string) bool {
	for _, l := range libs {
		if strings.EqualFold(filepath.Clean(l.Path), path) {
			return true
		}
	}
	return false
}
