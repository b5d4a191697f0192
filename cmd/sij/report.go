package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a summary report of a recorded run",
	Long: `Generate a Markdown summary of a fix or reset run from the run history.

The report includes:
- Run overview (mode, CDN provider, Steam path)
- Icon acquisition statistics
- Shortcut and icon cache changes
- Status breakdown and the games that failed

The report is saved to artifacts/reports/<timestamp>/summary.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("run", "", "run id (default: latest run)")
	reportCmd.Flags().String("out", "", "Output directory for report (default: artifacts/reports/<timestamp>)")
	reportCmd.Flags().Bool("list", false, "list recent runs instead of writing a report")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := dbPath()

	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if list, _ := cmd.Flags().GetBool("list"); list {
		return listRuns(cmd, db)
	}

	runID, _ := cmd.Flags().GetString("run")
	summaryReport, err := report.GenerateSummaryReport(db, runID)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	artifacts := GetConfigString("artifacts", "artifacts")
	outputDir, _ := cmd.Flags().GetString("out")
	if outputDir == "" {
		timestamp := time.Now().Format("20060102-150405")
		outputDir = filepath.Join(artifacts, "reports", timestamp)
	}
	outputPath := filepath.Join(outputDir, "summary.md")

	util.InfoLog("Writing report to: %s", outputPath)
	if err := report.WriteMarkdownReport(summaryReport, outputPath); err != nil {
		return err
	}

	util.SuccessLog("Report generated successfully!")
	util.InfoLog("  Run: %s (%s)", summaryReport.RunID, summaryReport.Mode)
	util.InfoLog("  Games processed: %d", summaryReport.GamesProcessed)
	util.InfoLog("  Icons downloaded: %d (%s)", summaryReport.IconsDownloaded, util.FormatBytes(summaryReport.BytesDownloaded))
	if summaryReport.IconsFailed > 0 {
		util.WarnLog("  Failed: %d", summaryReport.IconsFailed)
	}
	return nil
}

func listRuns(cmd *cobra.Command, db *store.Store) error {
	runs, err := db.ListRuns(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		util.InfoLog("No runs recorded yet")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-5s  %d/%d ok\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Succeeded, r.Total)
	}
	return nil
}
