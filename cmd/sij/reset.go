package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/remedy"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace every Steam shortcut in a directory with fresh ones",
	Long: `Delete all Steam .url shortcuts in --dir, download icons for every
installed game and create one new shortcut per game.

Non-Steam shortcuts in the directory are left alone.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().String("dir", "", "shortcut directory to rebuild (default: first shortcut_dirs entry)")
	resetCmd.Flags().Bool("force", false, "re-download icons that already exist")
	resetCmd.Flags().Bool("dry-run", false, "show what would change without touching anything")
	resetCmd.Flags().Bool("flush", false, "flush the OS icon cache afterwards")
}

func runReset(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")
	force = force || viper.GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	flush, _ := cmd.Flags().GetBool("flush")

	if dir == "" {
		dirs := shortcutDirs()
		if len(dirs) == 0 {
			return fmt.Errorf("no shortcut directory: use --dir")
		}
		dir = dirs[0]
	}

	provider, err := configuredProvider()
	if err != nil {
		return err
	}

	if !dryRun && !confirm(fmt.Sprintf("Delete all Steam shortcuts in %s and recreate them?", dir)) {
		util.InfoLog("Aborted")
		return nil
	}

	s, err := openSession(dryRun)
	if err != nil {
		return err
	}
	defer s.Close()

	if dryRun {
		util.InfoLog("=== DRY RUN MODE - no files will be changed ===")
	}

	rep, err := s.service.ReplaceAll(cmd.Context(), dir, remedy.Options{
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
