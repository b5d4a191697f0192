package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var flushCmd = &cobra.Command{
	Use:   "flush-cache",
	Short: "Rebuild the Windows icon cache",
	Long: `Stop the desktop shell, delete the icon cache databases, run the
system rebuild helper and start the shell again.

Open Explorer windows will close. Use --yes to skip the confirmation.`,
	RunE: runFlush,
}

func init() {
	rootCmd.AddCommand(flushCmd)
}

func runFlush(cmd *cobra.Command, args []string) error {
	if !confirmFlush() {
		util.InfoLog("Aborted")
		return nil
	}

	logger, err := report.NewEventLogger(GetConfigString("artifacts", "artifacts"), report.LevelInfo)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	defer logger.Close()

	result, err := newInvalidator(afero.NewOsFs(), logger).Flush(cmd.Context())
	if err != nil {
		return err
	}

	util.SuccessLog("Deleted %d cache files (%d failed)", len(result.Deleted), len(result.Failed))
	if !result.Rebuilt {
		util.WarnLog("Rebuild helper did not complete")
	}
	if !result.Restarted {
		util.ErrorLog("Desktop shell did not restart; start explorer.exe manually")
	}
	return nil
}
