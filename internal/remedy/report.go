package remedy

import (
	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/shell"
	"github.com/franz/steam-icon-janitor/internal/shortcut"
	"github.com/franz/steam-icon-janitor/internal/steam"
)

// Mode names the flow that produced a report
type Mode string

const (
	ModeFix   Mode = "fix"
	ModeReset Mode = "reset"
)

// Report is the outcome of one fix or reset run
type Report struct {
	RunID        string
	Mode         Mode
	DryRun       bool
	Provider     icons.Provider
	Installation steam.Installation
	StoreDir     string
	Env          *Environment

	Targets []shortcut.Target
	Results []icons.Result
	Pending []string // app ids a dry run would fetch

	Rewritten []string
	Deleted   []string
	Created   []string
	Refreshed []string // created paths that replaced a descriptor with different content

	Flush  *shell.FlushResult
	Errors []error
}

func newReport(mode Mode, env *Environment, storeDir string, opts Options) *Report {
	provider := opts.Provider
	if provider == "" {
		provider = icons.DefaultProvider
	}
	return &Report{
		Mode:         mode,
		DryRun:       opts.DryRun,
		Provider:     provider,
		Installation: env.Installation,
		StoreDir:     storeDir,
		Env:          env,
	}
}

// Succeeded counts results with a usable icon
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Success() {
			n++
		}
	}
	return n
}

// Failed counts results without a usable icon
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Downloaded counts icons written during the run
func (r *Report) Downloaded() int {
	n := 0
	for _, res := range r.Results {
		if res.Changed() {
			n++
		}
	}
	return n
}

// Changed reports whether the shell may be showing a stale icon: an icon was
// downloaded, or an existing descriptor now points somewhere else. Brand new
// descriptors have no cached rendering and do not count.
func (r *Report) Changed() bool {
	return r.Downloaded() > 0 || len(r.Rewritten) > 0 || len(r.Refreshed) > 0
}

func (r *Report) gameName(appID string) string {
	if r.Env == nil {
		return ""
	}
	if g, ok := r.Env.Game(appID); ok {
		return g.Name
	}
	return ""
}
