package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/remedy"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var fixCmd = &cobra.Command{
	Use:   "fix [dir...]",
	Short: "Download missing icons and repair existing Steam shortcuts",
	Long: `Scan shortcut directories for Steam .url shortcuts, download the icon
each one needs into Steam's icon store and point the shortcut at it.

Without arguments the configured shortcut_dirs are scanned (default: your
Desktop and the Steam start-menu folder). Icons already present are kept
unless --force is given. With --flush the Windows icon cache is rebuilt
afterwards, which restarts the desktop shell.`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().Bool("force", false, "re-download icons that already exist")
	fixCmd.Flags().Bool("dry-run", false, "show what would change without touching anything")
	fixCmd.Flags().Bool("flush", false, "flush the OS icon cache when something changed")
}

func runFix(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	force = force || viper.GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	flush, _ := cmd.Flags().GetBool("flush")

	provider, err := configuredProvider()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = shortcutDirs()
	}

	s, err := openSession(dryRun)
	if err != nil {
		return err
	}
	defer s.Close()

	if dryRun {
		util.InfoLog("=== DRY RUN MODE - no files will be changed ===")
	}

	rep, err := s.service.Fix(cmd.Context(), dirs, remedy.Options{
		Provider:   provider,
		Force:      force,
		StoreDir:   viper.GetString("store_dir"),
		DryRun:     dryRun,
		Flush:      flush,
		Confirm:    confirmFlush,
		OnProgress: progressReporter("Downloading icons"),
	})
	if err != nil {
		return err
	}

	printReport(cmd, rep)
	return nil
}

func confirmFlush() bool {
	return confirm("Flush the icon cache? This restarts the desktop shell")
}

// printReport writes the per-game outcome and a one-line summary
func printReport(cmd *cobra.Command, rep *remedy.Report) {
	out := cmd.OutOrStdout()

	if rep.DryRun {
		for _, id := range rep.Pending {
			fmt.Fprintf(out, "would fetch  %s\n", describe(rep, id))
		}
		for _, path := range rep.Deleted {
			fmt.Fprintf(out, "would delete %s\n", path)
		}
		for _, path := range rep.Rewritten {
			fmt.Fprintf(out, "would fix    %s\n", path)
		}
		for _, path := range rep.Created {
			fmt.Fprintf(out, "would create %s\n", path)
		}
		return
	}

	for _, r := range rep.Results {
		mark := "✓"
		if !r.Success() {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s %-40s %s\n", mark, describe(rep, r.AppID), r.Status)
	}

	util.SuccessLog("%d icons ok, %d failed, %d downloaded (%d shortcuts changed)",
		rep.Succeeded(), rep.Failed(), rep.Downloaded(), len(rep.Rewritten)+len(rep.Created))
	if rep.Flush != nil {
		util.SuccessLog("Icon cache flushed: %d files deleted, shell restarted: %v",
			len(rep.Flush.Deleted), rep.Flush.Restarted)
	}
	for _, err := range rep.Errors {
		util.WarnLog("%v", err)
	}
	if rep.RunID != "" {
		util.InfoLog("Run %s recorded; see 'sij report'", rep.RunID)
	}
}

func describe(rep *remedy.Report, appID string) string {
	if rep.Env != nil {
		if g, ok := rep.Env.Game(appID); ok {
			return fmt.Sprintf("%s (%s)", g.Name, appID)
		}
	}
	return appID
}
