package steam

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libraryFoldersVDF = `"libraryfolders"
{
	"0"
	{
		"path"		"/steam"
		"label"		""
	}
	"1"
	{
		"path"		"/games/SteamLibrary"
		"apps"
		{
			"730"		"123"
		}
	}
	"2"
	{
		"path"		"/GAMES/steamlibrary"
	}
	"3"
	{
		"path"		"/unplugged/SteamLibrary"
	}
	"4"
	{
		"path"		"/extra"
	}
}
`

func TestResolve_MainLibraryFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/steam/steamapps", 0755))
	require.NoError(t, fs.MkdirAll("/games/SteamLibrary", 0755))
	require.NoError(t, fs.MkdirAll("/GAMES/steamlibrary", 0755))
	require.NoError(t, fs.MkdirAll("/extra", 0755))
	require.NoError(t, afero.WriteFile(fs, "/steam/steamapps/libraryfolders.vdf", []byte(libraryFoldersVDF), 0644))

	libs := NewLibraryResolver(fs).Resolve(NewInstallation("/steam", ""))

	require.Len(t, libs, 3)
	assert.Equal(t, Library{Path: "/steam", Label: MainLibraryLabel}, libs[0])
	assert.Equal(t, "/games/SteamLibrary", libs[1].Path)
	assert.Equal(t, "Library 1", libs[1].Label)
	assert.Equal(t, "/extra", libs[2].Path)
	assert.Equal(t, "Library 2", libs[2].Label)
}

func TestResolve_MissingRegistryFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/steam", 0755))

	libs := NewLibraryResolver(fs).Resolve(NewInstallation("/steam", ""))

	require.Len(t, libs, 1)
	assert.Equal(t, MainLibraryLabel, libs[0].Label)
}

func TestUnescapeVDFPath(t *testing.T) {
	got := unescapeVDFPath(`D:\\SteamLibrary`)
	assert.Equal(t, filepath.Clean(`D:\SteamLibrary`), got)
}
