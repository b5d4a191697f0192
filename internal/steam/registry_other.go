//go:build !windows

package steam

type noRegistry struct{}

// NewSystemRegistry returns an empty KeyValueStore; there is no registry
// outside Windows, so the Locator falls through to conventional paths.
func NewSystemRegistry() KeyValueStore {
	return noRegistry{}
}

func (noRegistry) Get(string, string) (string, bool) {
	return "", false
}
