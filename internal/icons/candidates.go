package icons

import (
	"fmt"
	"strings"

	"github.com/franz/steam-icon-janitor/internal/util"
)

// Provider selects which CDN brand host is tried first
type Provider string

const (
	ProviderCloudflare Provider = "cloudflare"
	ProviderAkamai     Provider = "akamai"

	// DefaultProvider is used when no preference is configured
	DefaultProvider = ProviderCloudflare
)

const (
	cloudflareHost = "cdn.cloudflare.steamstatic.com"
	akamaiHost     = "cdn.akamai.steamstatic.com"
	legacyHost     = "steamcdn-a.akamaihd.net"
)

// ParseProvider maps a configuration value to a Provider; empty means default
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultProvider, nil
	case ProviderCloudflare:
		return ProviderCloudflare, nil
	case ProviderAkamai:
		return ProviderAkamai, nil
	}
	return "", fmt.Errorf("unknown CDN provider %q (want cloudflare or akamai): %w", s, util.ErrInvalidConfig)
}

func (p Provider) hosts() (preferred, other string) {
	if p == ProviderAkamai {
		return akamaiHost, cloudflareHost
	}
	return cloudflareHost, akamaiHost
}

// Candidate is one CDN URL attempt for an app
type Candidate struct {
	URL     string
	Ordinal int
}

// CandidateFunc builds the ordered candidate list for an app
type CandidateFunc func(appID string, provider Provider) []Candidate

// Candidates returns the ordered CDN URLs for appID. The result depends only
// on its arguments.
func Candidates(appID string, provider Provider) []Candidate {
	pref, other := provider.hosts()

	urls := []string{
		assetURL("https", pref, appID, "icon.ico"),
		assetURL("http", pref, appID, "icon.ico"),
		assetURL("https", other, appID, "icon.ico"),
		assetURL("http", other, appID, "icon.ico"),
		assetURL("https", pref, appID, appID+".ico"),
		assetURL("https", other, appID, appID+".ico"),
		assetURL("https", legacyHost, appID, "icon.ico"),
		assetURL("https", legacyHost, appID, appID+".ico"),
		// Last resorts, not ICO
		assetURL("https", pref, appID, "header.jpg"),
		assetURL("https", pref, appID, "capsule_184x69.jpg"),
	}

	candidates := make([]Candidate, len(urls))
	for i, u := range urls {
		candidates[i] = Candidate{URL: u, Ordinal: i}
	}
	return candidates
}

func assetURL(scheme, host, appID, file string) string {
	return fmt.Sprintf("%s://%s/steam/apps/%s/%s", scheme, host, appID, file)
}
