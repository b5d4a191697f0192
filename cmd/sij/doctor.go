package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/remedy"
	"github.com/franz/steam-icon-janitor/internal/shell"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure sij can operate correctly.

This command checks:
- SQLite version and run history database integrity
- Steam installation, libraries and installed games
- Icon store write permission
- CDN reachability for each icon host
- Icon cache flush support on this platform

Use this command to troubleshoot issues before running sij fix.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("offline", false, "skip CDN reachability checks")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

// probeAppID is a long-lived app whose assets every CDN host serves
const probeAppID = "440"

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== SIJ Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	results = append(results, checkSQLite())
	results = append(results, checkDatabase(dbPath()))

	svc := remedy.New(&remedy.Config{SteamPath: viper.GetString("steam_path")})
	env, err := svc.Discover()
	results = append(results, checkSteam(env, err))
	if env != nil {
		results = append(results, checkGames(env))
		results = append(results, checkIconStore(env.Installation.IconStoreDir()))
	}

	if offline, _ := cmd.Flags().GetBool("offline"); !offline {
		fetcher := icons.NewHTTPFetcher(&icons.HTTPFetcherConfig{
			UserAgent: GetConfigString("user_agent", icons.UserAgent),
			Timeout:   5 * time.Second,
		})
		for _, provider := range []icons.Provider{icons.ProviderCloudflare, icons.ProviderAkamai} {
			c := icons.Candidates(probeAppID, provider)[0]
			results = append(results, checkCDN(cmd.Context(), fetcher, c.URL))
		}
	}

	results = append(results, checkFlushSupport(shell.DefaultPlan()))

	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running sij.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! System is ready for sij operations.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies run history accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	size := util.FormatBytes(info.Size())
	lastRun := "no runs yet"
	if run, err := db.LatestRun(); err == nil {
		lastRun = fmt.Sprintf("last run %s", run.StartedAt.Local().Format("2006-01-02 15:04"))
	}

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, %s)", dbPath, size, lastRun),
	}
}

// checkSteam reports the located installation
func checkSteam(env *remedy.Environment, err error) checkResult {
	if err != nil {
		return checkResult{
			name:    "Steam installation",
			error:   true,
			message: fmt.Sprintf("%v (use --steam-path)", err),
		}
	}

	msg := fmt.Sprintf("%s (via %s, %d libraries)", env.Installation.Path, env.Installation.Source, len(env.Libraries))
	if userID, ok := env.Installation.UserID(); ok {
		msg += fmt.Sprintf(", user %s", userID)
	}
	return checkResult{
		name:    "Steam installation",
		message: msg,
	}
}

// checkGames warns when no manifests were found
func checkGames(env *remedy.Environment) checkResult {
	if len(env.Games) == 0 {
		return checkResult{
			name:    "Installed games",
			warning: true,
			message: "no app manifests found in any library",
		}
	}

	var total int64
	for _, g := range env.Games {
		total += g.SizeBytes
	}
	return checkResult{
		name:    "Installed games",
		message: fmt.Sprintf("%d games (%s)", len(env.Games), util.FormatBytes(total)),
	}
}

// checkIconStore verifies the icon store directory is writable
func checkIconStore(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Icon store",
				warning: true,
				message: fmt.Sprintf("%s does not exist (will be created)", path),
			}
		}
		return checkResult{
			name:    "Icon store",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Icon store",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	testFile := filepath.Join(path, ".sij_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Icon store",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Icon store",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkCDN probes one icon host. Any HTTP answer, including 404, means the
// host is reachable.
func checkCDN(ctx context.Context, fetcher *icons.HTTPFetcher, rawURL string) checkResult {
	name := "CDN"
	if u, err := url.Parse(rawURL); err == nil {
		name = fmt.Sprintf("CDN %s", u.Host)
	}

	start := time.Now()
	status, err := fetcher.Probe(ctx, rawURL)
	if err != nil {
		return checkResult{
			name:    name,
			warning: true,
			message: fmt.Sprintf("unreachable: %v", err),
		}
	}

	msg := fmt.Sprintf("HTTP %d in %s", status, time.Since(start).Round(time.Millisecond))
	return checkResult{
		name:    name,
		warning: status >= http.StatusInternalServerError,
		message: msg,
	}
}

// checkFlushSupport reports whether flush-cache works on this platform
func checkFlushSupport(plan shell.Plan) checkResult {
	if !plan.Supported() {
		return checkResult{
			name:    "Icon cache flush",
			warning: true,
			message: "not supported on this platform",
		}
	}
	return checkResult{
		name:    "Icon cache flush",
		message: fmt.Sprintf("%s + %s", plan.ShellProcess, plan.RebuildHelper),
	}
}
