package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// SummaryReport represents a complete summary of one run
type SummaryReport struct {
	GeneratedAt time.Time
	Duration    time.Duration

	RunID     string
	Mode      string
	Provider  string
	SteamPath string
	StartedAt time.Time

	// Acquisition statistics
	GamesProcessed  int
	IconsSucceeded  int
	IconsFailed     int
	IconsDownloaded int
	BytesDownloaded int64

	// Shortcut and shell statistics
	ShortcutsChanged int
	CacheFlushed     bool

	// Details
	StatusCounts []store.StatusCount
	Failures     []FailedGame

	DatabasePath string
	EventLogPath string
}

// FailedGame is a game whose icon could not be provisioned
type FailedGame struct {
	AppID  string
	Name   string
	Status string
}

// GenerateSummaryReport builds a report for runID, or for the latest run when runID is empty
func GenerateSummaryReport(db *store.Store, runID string) (*SummaryReport, error) {
	var run *store.Run
	var err error
	if runID == "" {
		run, err = db.LatestRun()
	} else {
		run, err = db.GetRun(runID)
	}
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		GeneratedAt:      time.Now(),
		RunID:            run.ID,
		Mode:             run.Mode,
		Provider:         run.Provider,
		SteamPath:        run.SteamPath,
		StartedAt:        run.StartedAt,
		ShortcutsChanged: run.ShortcutsChanged,
		CacheFlushed:     run.CacheFlushed,
		DatabasePath:     db.Path(),
		Failures:         make([]FailedGame, 0),
	}
	if !run.CompletedAt.IsZero() {
		report.Duration = run.CompletedAt.Sub(run.StartedAt)
	}

	acqs, err := db.GetAcquisitions(run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load acquisitions: %w", err)
	}

	for _, a := range acqs {
		report.GamesProcessed++
		if a.Success {
			report.IconsSucceeded++
			if a.Bytes > 0 {
				report.IconsDownloaded++
			}
			continue
		}
		report.IconsFailed++
		report.Failures = append(report.Failures, FailedGame{AppID: a.AppID, Name: a.Name, Status: a.Status})
	}

	report.BytesDownloaded, _ = db.GetTotalBytesDownloaded(run.ID)
	report.StatusCounts, _ = db.CountByStatus(run.ID)

	return report, nil
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RenderMarkdown formats the report as a Markdown document
func RenderMarkdown(report *SummaryReport) string {
	var md strings.Builder

	md.WriteString("# Steam Icon Janitor - Run Report\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	md.WriteString(fmt.Sprintf("**Run:** `%s` (%s)\n\n", report.RunID, report.Mode))

	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	if report.SteamPath != "" {
		md.WriteString(fmt.Sprintf("| Steam | `%s` |\n", report.SteamPath))
	}
	if report.Provider != "" {
		md.WriteString(fmt.Sprintf("| CDN Provider | %s |\n", report.Provider))
	}
	md.WriteString(fmt.Sprintf("| Games Processed | %d |\n", report.GamesProcessed))
	if report.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", report.Duration.Round(time.Second)))
	}
	md.WriteString("\n")

	md.WriteString("## 🖼️ Icons\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Succeeded | %d |\n", report.IconsSucceeded))
	md.WriteString(fmt.Sprintf("| Downloaded | %d |\n", report.IconsDownloaded))
	if report.IconsFailed > 0 {
		md.WriteString(fmt.Sprintf("| Failed | %d |\n", report.IconsFailed))
	}
	md.WriteString(fmt.Sprintf("| Bytes Downloaded | %s |\n", util.FormatBytes(report.BytesDownloaded)))
	md.WriteString("\n")

	md.WriteString("## 🔗 Shortcuts\n\n")
	md.WriteString(fmt.Sprintf("- Shortcuts changed: %d\n", report.ShortcutsChanged))
	if report.CacheFlushed {
		md.WriteString("- Icon cache: flushed\n")
	} else {
		md.WriteString("- Icon cache: untouched\n")
	}
	md.WriteString("\n")

	if len(report.StatusCounts) > 0 {
		md.WriteString("## 📋 Status Breakdown\n\n")
		md.WriteString("| Count | Status |\n")
		md.WriteString("|-------|--------|\n")
		for _, c := range report.StatusCounts {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", c.Count, c.Status))
		}
		md.WriteString("\n")
	}

	if len(report.Failures) > 0 {
		md.WriteString("## ⚠️ Failed Games\n\n")
		md.WriteString("| App ID | Name | Status |\n")
		md.WriteString("|--------|------|--------|\n")
		for _, f := range report.Failures {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n", f.AppID, truncateName(f.Name, 40), f.Status))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by sij - Steam Icon Janitor*\n")

	return md.String()
}

// truncateName shortens a display name, keeping start and end
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	start := maxLen/2 - 2
	end := len(runes) - (maxLen/2 - 2)
	return string(runes[:start]) + "..." + string(runes[end:])
}
