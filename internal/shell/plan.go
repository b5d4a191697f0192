package shell

import "path/filepath"

// Plan names the platform pieces a flush touches
type Plan struct {
	// ShellProcess is the desktop shell image name, e.g. explorer.exe
	ShellProcess string

	// RebuildHelper and RebuildArgs rebuild the icon cache after deletion
	RebuildHelper string
	RebuildArgs   []string

	// CacheFiles are deleted in order; missing files are ignored
	CacheFiles []string
}

// Supported reports whether the plan can run on this platform
func (p Plan) Supported() bool {
	return p.ShellProcess != ""
}

var cacheSizes = []string{
	"16", "32", "48", "96", "256", "768", "1280", "1920", "2560",
	"custom", "exif", "idx", "sr", "wide", "wide_alternate",
}

// explorerCacheFiles lists IconCache.db under localAppData and the
// per-size icon and thumbnail caches in the Explorer cache directory
func explorerCacheFiles(localAppData string) []string {
	files := []string{filepath.Join(localAppData, "IconCache.db")}

	explorerDir := filepath.Join(localAppData, "Microsoft", "Windows", "Explorer")
	for _, prefix := range []string{"iconcache", "thumbcache"} {
		for _, size := range cacheSizes {
			files = append(files, filepath.Join(explorerDir, prefix+"_"+size+".db"))
		}
	}
	return files
}
