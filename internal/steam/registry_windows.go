//go:build windows

package steam

import (
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

type systemRegistry struct{}

// NewSystemRegistry returns a KeyValueStore backed by the Windows registry.
// Scopes are written as `HKLM\...` or `HKCU\...`.
func NewSystemRegistry() KeyValueStore {
	return systemRegistry{}
}

func (systemRegistry) Get(scopePath, valueName string) (string, bool) {
	root, sub, ok := splitScope(scopePath)
	if !ok {
		return "", false
	}

	key, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer key.Close()

	if s, _, err := key.GetStringValue(valueName); err == nil {
		return s, true
	}
	if n, _, err := key.GetIntegerValue(valueName); err == nil {
		return strconv.FormatUint(n, 10), true
	}
	return "", false
}

func splitScope(scope string) (registry.Key, string, bool) {
	hive, sub, found := strings.Cut(scope, `\`)
	if !found {
		return 0, "", false
	}
	switch strings.ToUpper(hive) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return registry.LOCAL_MACHINE, sub, true
	case "HKCU", "HKEY_CURRENT_USER":
		return registry.CURRENT_USER, sub, true
	}
	return 0, "", false
}
