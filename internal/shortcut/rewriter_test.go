package shortcut

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/steam-icon-janitor/internal/catalog"
	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/util"
)

const (
	desktop  = "/home/user/Desktop"
	storeDir = "/steam/steam/games"
)

func writeShortcut(t *testing.T, fs afero.Fs, name, body string) string {
	t.Helper()
	path := filepath.Join(desktop, name)
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0644))
	return path
}

func TestScanClassifiesTargets(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeShortcut(t, fs, "CS2.url", steamWritten)
	writeShortcut(t, fs, "Website.url", "[InternetShortcut]\r\nURL=https://example.com\r\n")
	writeShortcut(t, fs, "notes.txt", "URL=steam://rungameid/1\r\n")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(desktop, "sub", "Nested.url"), []byte(steamWritten), 0644))

	targets, err := NewRewriter(&Config{Fs: fs}).Scan(desktop)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "730", targets[0].AppID)
	assert.Equal(t, filepath.Join(desktop, "CS2.url"), targets[0].Descriptor.Path)
}

func TestScanMissingDir(t *testing.T) {
	_, err := NewRewriter(&Config{Fs: afero.NewMemMapFs()}).Scan("/nowhere")
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeShortcut(t, fs, "CS2.url", steamWritten)
	rw := NewRewriter(&Config{Fs: fs})
	iconPath := icons.IconPath(storeDir, "730")

	d, err := rw.Read(path)
	require.NoError(t, err)
	changed, err := rw.Normalize(d, iconPath)
	require.NoError(t, err)
	assert.True(t, changed)

	first, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	d, err = rw.Read(path)
	require.NoError(t, err)
	changed, err = rw.Normalize(d, iconPath)
	require.NoError(t, err)
	assert.False(t, changed)

	second, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	d = Parse(path, second)
	assert.Equal(t, iconPath, d.IconFile())
	assert.Equal(t, "0", d.IconIndex())
	assert.Equal(t, "steam://rungameid/730", d.URL())
}

func TestDeleteAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeShortcut(t, fs, "B Game.url", "[InternetShortcut]\r\nURL=steam://rungameid/2\r\n")
	writeShortcut(t, fs, "A Game.url", "[InternetShortcut]\r\nURL=steam://rungameid/1\r\n")
	writeShortcut(t, fs, "Library.url", "[InternetShortcut]\r\nURL=steam://open/games\r\n")
	keep := writeShortcut(t, fs, "Docs.url", "[InternetShortcut]\r\nURL=https://go.dev\r\n")

	deleted, err := NewRewriter(&Config{Fs: fs}).DeleteAll(desktop)
	require.NoError(t, err)
	assert.Equal(t, []string{"A Game.url", "B Game.url", "Library.url"}, deleted)

	exists, _ := afero.Exists(fs, keep)
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, filepath.Join(desktop, "A Game.url"))
	assert.False(t, exists)
}

func TestCreateOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	rw := NewRewriter(&Config{Fs: fs})
	game := catalog.Game{AppID: "620", Name: "Portal 2"}

	writeShortcut(t, fs, "Portal 2.url", "[InternetShortcut]\r\nURL=steam://rungameid/999\r\n")

	path, err := rw.Create(game, desktop, storeDir)
	require.NoError(t, err)
	assert.Equal(t, Path(game, desktop), path)

	again, err := rw.Create(game, desktop, storeDir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	d, err := rw.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "steam://rungameid/620", d.URL())
	assert.Equal(t, icons.IconPath(storeDir, "620"), d.IconFile())
	assert.Equal(t, "0", d.IconIndex())
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		game catalog.Game
		want string
	}{
		{"plain", catalog.Game{AppID: "1", Name: "Half-Life"}, "Half-Life.url"},
		{"forbidden runes", catalog.Game{AppID: "2", Name: `Tom Clancy's: "Rainbow" 6/Siege?`}, "Tom Clancy's Rainbow 6Siege.url"},
		{"trailing dots", catalog.Game{AppID: "3", Name: "Game..."}, "Game.url"},
		{"empty", catalog.Game{AppID: "4", Name: "***"}, "Steam App 4.url"},
		{"reserved", catalog.Game{AppID: "5", Name: "con"}, "con (5).url"},
		{"nfc", catalog.Game{AppID: "6", Name: "Poke\u0301mon"}, "Pok\u00e9mon.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.game))
		})
	}
}

func TestFileNamesDisambiguatesCollisions(t *testing.T) {
	games := []catalog.Game{
		{AppID: "2", Name: "Foo Bar"},
		{AppID: "1", Name: "Foo: Bar"},
		{AppID: "3", Name: "foo bar"},
		{AppID: "4", Name: "Portal"},
	}

	names := FileNames(games)

	assert.Equal(t, "Foo Bar.url", names["2"])
	assert.Equal(t, "Foo Bar (1).url", names["1"])
	assert.Equal(t, "foo bar (3).url", names["3"])
	assert.Equal(t, "Portal.url", names["4"])
}

func TestCreateNamedKeepsBothCollidingGames(t *testing.T) {
	fs := afero.NewMemMapFs()
	rw := NewRewriter(&Config{Fs: fs})
	games := []catalog.Game{
		{AppID: "2", Name: "Foo Bar"},
		{AppID: "1", Name: "Foo: Bar"},
	}
	require.Equal(t, FileName(games[0]), FileName(games[1]))

	names := FileNames(games)
	var paths []string
	for _, g := range games {
		path, err := rw.CreateNamed(g, desktop, names[g.AppID], storeDir)
		require.NoError(t, err)
		paths = append(paths, path)
	}
	require.NotEqual(t, paths[0], paths[1])

	for i, g := range games {
		d, err := rw.Read(paths[i])
		require.NoError(t, err)
		assert.Equal(t, g.LaunchURL(), d.URL())
	}
}

func TestNeedsNormalize(t *testing.T) {
	iconPath := icons.IconPath(storeDir, "730")

	d := Parse("cs2.url", []byte(steamWritten))
	assert.True(t, NeedsNormalize(d, iconPath))

	d = New("cs2.url", "steam://rungameid/730", iconPath)
	assert.False(t, NeedsNormalize(d, iconPath))
}
