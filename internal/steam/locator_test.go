package steam

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/steam-icon-janitor/internal/util"
)

// fakeRegistry is an in-memory KeyValueStore keyed by scope + value name.
type fakeRegistry map[string]string

func (f fakeRegistry) Get(scope, name string) (string, bool) {
	v, ok := f[scope+"|"+name]
	return v, ok
}

func newTestLocator(fs afero.Fs, reg fakeRegistry, candidates ...string) *Locator {
	return NewLocator(&LocatorConfig{
		Fs:          fs,
		Registry:    reg,
		Candidates:  candidates,
		Executables: []string{"steam.exe"},
	})
}

func TestLocate_Prefers64BitRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/steam64", 0755))
	require.NoError(t, fs.MkdirAll("/steam32", 0755))

	reg := fakeRegistry{
		Scope64Bit + "|InstallPath": "/steam64",
		Scope32Bit + "|InstallPath": "/steam32",
	}

	inst, err := newTestLocator(fs, reg).Locate()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/steam64"), inst.Path)
	assert.Equal(t, "registry (64-bit)", inst.Source)
}

func TestLocate_SkipsRegistryEntryForMissingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/steam32", 0755))

	reg := fakeRegistry{
		Scope64Bit + "|InstallPath": "/gone",
		Scope32Bit + "|InstallPath": "/steam32",
	}

	inst, err := newTestLocator(fs, reg).Locate()
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/steam32"), inst.Path)
}

func TestLocate_UserScopeNormalizesSeparators(t *testing.T) {
	fs := afero.NewMemMapFs()
	native := filepath.FromSlash("/users/me/steam")
	require.NoError(t, fs.MkdirAll(native, 0755))

	reg := fakeRegistry{ScopeUser + "|SteamPath": "/users/me/steam"}

	inst, err := newTestLocator(fs, reg).Locate()
	require.NoError(t, err)
	assert.Equal(t, native, inst.Path)
	assert.Equal(t, "registry (user)", inst.Source)
}

func TestLocate_ConventionalPathNeedsExecutable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty/Steam", 0755))
	require.NoError(t, fs.MkdirAll("/real/Steam", 0755))
	require.NoError(t, afero.WriteFile(fs, "/real/Steam/steam.exe", []byte("MZ"), 0644))

	inst, err := newTestLocator(fs, fakeRegistry{}, "/empty/Steam", "/real/Steam").Locate()
	require.NoError(t, err)
	assert.Equal(t, "/real/Steam", inst.Path)
	assert.Equal(t, "conventional path", inst.Source)
}

func TestLocate_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := newTestLocator(fs, fakeRegistry{}, "/nowhere").Locate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSteamNotFound))
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestLocate_UserID(t *testing.T) {
	tests := []struct {
		name   string
		reg    fakeRegistry
		dirs   []string
		want   string
		wantOK bool
	}{
		{
			name:   "active user from registry",
			reg:    fakeRegistry{ScopeActiveProcess + "|ActiveUser": "4242"},
			want:   "4242",
			wantOK: true,
		},
		{
			name:   "logged out user falls back to userdata",
			reg:    fakeRegistry{ScopeActiveProcess + "|ActiveUser": "0"},
			dirs:   []string{"0", "777", "555", "config"},
			want:   "555",
			wantOK: true,
		},
		{
			name:   "no user",
			reg:    fakeRegistry{},
			dirs:   []string{"0"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, fs.MkdirAll("/steam", 0755))
			for _, d := range tt.dirs {
				require.NoError(t, fs.MkdirAll(filepath.Join("/steam", "userdata", d), 0755))
			}
			tt.reg[Scope64Bit+"|InstallPath"] = "/steam"

			inst, err := newTestLocator(fs, tt.reg).Locate()
			require.NoError(t, err)

			id, ok := inst.UserID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestInstallationPaths(t *testing.T) {
	inst := NewInstallation(filepath.Join("test", "steam"), "")

	assert.Equal(t, filepath.Join("test", "steam", "steamapps", "libraryfolders.vdf"), inst.LibraryFoldersPath())
	assert.Equal(t, filepath.Join("test", "steam", "steam", "games"), inst.IconStoreDir())

	_, ok := inst.UserID()
	assert.False(t, ok)
}
