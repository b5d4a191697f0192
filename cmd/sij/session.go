package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/remedy"
	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/shell"
	"github.com/franz/steam-icon-janitor/internal/steam"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// session holds the collaborators one command run needs
type session struct {
	fs      afero.Fs
	db      *store.Store
	logger  *report.EventLogger
	service *remedy.Service
}

// openSession builds the service stack from configuration. Dry runs keep
// run history in memory.
func openSession(dryRun bool) (*session, error) {
	fs := afero.NewOsFs()

	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger(GetConfigString("artifacts", "artifacts"), logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	if logger.Path() != "" {
		util.DebugLog("Event log: %s", logger.Path())
	}

	db, err := store.OpenWithOptions(dbPath(), &store.OpenOptions{InMemory: dryRun})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	fetcher := icons.NewHTTPFetcher(&icons.HTTPFetcherConfig{
		UserAgent: GetConfigString("user_agent", icons.UserAgent),
		Timeout:   GetConfigDuration("http_timeout", icons.DefaultTimeout),
	})
	pipeline := icons.New(&icons.Config{
		Fs:          fs,
		Fetcher:     fetcher,
		Concurrency: GetConfigInt("concurrency", icons.DefaultConcurrency),
		Logger:      logger,
	})

	svc := remedy.New(&remedy.Config{
		Fs:        fs,
		Locator:   steam.NewLocator(&steam.LocatorConfig{Fs: fs}),
		SteamPath: viper.GetString("steam_path"),
		Pipeline:  pipeline,
		Flusher:   newInvalidator(fs, logger),
		Store:     db,
		Logger:    logger,
	})

	return &session{fs: fs, db: db, logger: logger, service: svc}, nil
}

func newInvalidator(fs afero.Fs, logger *report.EventLogger) *shell.Invalidator {
	return shell.NewInvalidator(&shell.Config{
		Fs:      fs,
		Timeout: GetConfigDuration("shell_timeout", shell.DefaultTimeout),
		Logger:  logger,
	})
}

func (s *session) Close() {
	s.db.Close()
	s.logger.Close()
}

// confirm asks a yes/no question on stderr. --yes answers for the user; a
// non-interactive stdin answers no.
func confirm(prompt string) bool {
	if util.AssumeYes() {
		return true
	}
	if !util.IsTerminal(os.Stdin.Fd()) {
		util.WarnLog("%s: not confirmed (stdin is not a terminal, use --yes)", prompt)
		return false
	}

	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// progressReporter renders acquisition progress as a bar on a TTY and as
// periodic log lines otherwise
func progressReporter(description string) icons.ProgressFunc {
	if util.IsQuiet() {
		return nil
	}

	var bar *progressbar.ProgressBar
	var lastLog time.Time

	return func(completed, total int) {
		if !util.ShowProgress() {
			if completed == total || time.Since(lastLog) > 2*time.Second {
				pct := float64(completed) / float64(total) * 100
				util.InfoLog("%s: %d/%d (%.1f%%)", description, completed, total, pct)
				lastLog = time.Now()
			}
			return
		}

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetItsString("icons"),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetRenderBlankState(true),
			)
		}
		bar.Set(completed)
		if completed == total {
			bar.Finish()
		}
	}
}
