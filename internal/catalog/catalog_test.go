package catalog

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/steam-icon-janitor/internal/steam"
)

func manifest(appID, name, installDir string, size int64) string {
	return fmt.Sprintf(`"AppState"
{
	"appid"		"%s"
	"Universe"		"1"
	"name"		"%s"
	"StateFlags"		"4"
	"installdir"		"%s"
	"SizeOnDisk"		"%d"
}
`, appID, name, installDir, size)
}

func writeManifest(t *testing.T, fs afero.Fs, lib steam.Library, appID, body string) {
	t.Helper()
	path := filepath.Join(lib.SteamAppsDir(), "appmanifest_"+appID+".acf")
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0644))
}

func TestScan_WellFormedAndMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	lib := steam.Library{Path: "/steam", Label: steam.MainLibraryLabel}

	writeManifest(t, fs, lib, "200", manifest("200", "Zeta Quest", "Zeta", 2048))
	writeManifest(t, fs, lib, "100", manifest("100", "Alpha Strike", "Alpha", 1024))
	writeManifest(t, fs, lib, "300", manifest("300", "alpha lowercase", "alpha2", 1))
	writeManifest(t, fs, lib, "400", `"AppState" { "appid" "400" "installdir" "NoName" }`)
	writeManifest(t, fs, lib, "500", "garbage")

	games := New(&Config{Fs: fs}).Scan([]steam.Library{lib})

	require.Len(t, games, 3)
	// Ordinal: uppercase sorts before lowercase
	assert.Equal(t, "Alpha Strike", games[0].Name)
	assert.Equal(t, "Zeta Quest", games[1].Name)
	assert.Equal(t, "alpha lowercase", games[2].Name)

	assert.Equal(t, "100", games[0].AppID)
	assert.Equal(t, "Alpha", games[0].InstallDir)
	assert.Equal(t, "/steam", games[0].LibraryPath)
	assert.Equal(t, int64(1024), games[0].SizeBytes)
}

func TestScan_KeysAreCaseInsensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	lib := steam.Library{Path: "/steam", Label: steam.MainLibraryLabel}

	writeManifest(t, fs, lib, "620", `"AppState"
{
	"AppID"		"620"
	"Name"		"Portal 2"
	"InstallDir"		"Portal 2"
	"sizeondisk"		"4096"
}
`)

	games := New(&Config{Fs: fs}).Scan([]steam.Library{lib})

	require.Len(t, games, 1)
	assert.Equal(t, "Portal 2", games[0].Name)
	assert.Equal(t, "Portal 2", games[0].InstallDir)
	assert.Equal(t, int64(4096), games[0].SizeBytes)
}

func TestScan_FirstLibraryWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	main := steam.Library{Path: "/steam", Label: steam.MainLibraryLabel}
	extra := steam.Library{Path: "/lib2", Label: "Library 1"}

	writeManifest(t, fs, main, "730", manifest("730", "Shooter", "shooter", 10))
	writeManifest(t, fs, extra, "730", manifest("730", "Shooter (copy)", "shooter", 99))
	writeManifest(t, fs, extra, "440", manifest("440", "Hats", "hats", 5))

	games := New(&Config{Fs: fs}).Scan([]steam.Library{main, extra})

	require.Len(t, games, 2)
	assert.Equal(t, "Hats", games[0].Name)
	assert.Equal(t, "/lib2", games[0].LibraryPath)
	assert.Equal(t, "Shooter", games[1].Name)
	assert.Equal(t, "/steam", games[1].LibraryPath)
}

func TestScan_MissingLibraryDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	games := New(&Config{Fs: fs}).Scan([]steam.Library{{Path: "/nowhere", Label: "Main"}})
	assert.Empty(t, games)
}

func TestScan_SizeFallsBackToInstallDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	lib := steam.Library{Path: "/steam", Label: steam.MainLibraryLabel}
	body := `"AppState"
{
	"appid"		"10"
	"name"		"Sizeless"
	"installdir"		"sizeless"
}
`
	writeManifest(t, fs, lib, "10", body)
	require.NoError(t, fs.MkdirAll("/steam/steamapps/common/sizeless/bin", 0755))
	require.NoError(t, afero.WriteFile(fs, "/steam/steamapps/common/sizeless/game.exe", make([]byte, 300), 0644))
	require.NoError(t, afero.WriteFile(fs, "/steam/steamapps/common/sizeless/bin/data.pak", make([]byte, 700), 0644))

	games := New(&Config{Fs: fs}).Scan([]steam.Library{lib})

	require.Len(t, games, 1)
	assert.Equal(t, int64(1000), games[0].SizeBytes)
}

func TestGame_URLs(t *testing.T) {
	g := Game{AppID: "730", InstallDir: "cs", LibraryPath: "/steam"}

	assert.Equal(t, "steam://rungameid/730", g.LaunchURL())
	assert.Equal(t, filepath.Join("/steam", "steamapps", "common", "cs"), g.InstallPath())
}
