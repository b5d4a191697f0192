package icons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// DefaultConcurrency is the number of apps processed at once
const DefaultConcurrency = 5

// Status is the outcome message of one acquisition
type Status string

const (
	StatusAlreadyExists Status = "Already exists"
	StatusDownloaded    Status = "Downloaded successfully"
	StatusCDNFailed     Status = "Failed to download icon from CDN"
	StatusSaveFailed    Status = "Failed to save icon"
	StatusInvalidAppID  Status = "Invalid app id"
	StatusInternalError Status = "Internal error"
)

// Success reports whether the status leaves a usable icon on disk
func (s Status) Success() bool {
	return s == StatusAlreadyExists || s == StatusDownloaded
}

// Result is the outcome for one app
type Result struct {
	AppID     string
	Status    Status
	IconPath  string
	SourceURL string
	Bytes     int64
	Duration  time.Duration
}

// Success reports whether the app has a usable icon
func (r Result) Success() bool {
	return r.Status.Success()
}

// Changed reports whether a new icon was written during this run
func (r Result) Changed() bool {
	return r.Status == StatusDownloaded
}

// ProgressFunc receives completed and total counts
type ProgressFunc func(completed, total int)

// Request describes one batch acquisition
type Request struct {
	AppIDs     []string
	StoreDir   string
	Provider   Provider
	Force      bool
	OnProgress ProgressFunc
}

// IconPath returns the canonical icon location for appID inside storeDir
func IconPath(storeDir, appID string) string {
	return filepath.Join(storeDir, appID+"_icon.ico")
}

// Pipeline downloads icons for many apps under bounded concurrency
type Pipeline struct {
	fs          afero.Fs
	fetcher     Fetcher
	candidates  CandidateFunc
	concurrency int
	logger      *report.EventLogger
}

// Config holds pipeline configuration
type Config struct {
	Fs          afero.Fs
	Fetcher     Fetcher
	Candidates  CandidateFunc // nil = Candidates
	Concurrency int
	Logger      *report.EventLogger
}

// New creates a Pipeline
func New(cfg *Config) *Pipeline {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewHTTPFetcher(nil)
	}
	if cfg.Candidates == nil {
		cfg.Candidates = Candidates
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Pipeline{
		fs:          cfg.Fs,
		fetcher:     cfg.Fetcher,
		candidates:  cfg.Candidates,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
}

// Acquire processes every app in req and returns one result per input, in
// input order. A failing app never aborts the batch.
func (p *Pipeline) Acquire(ctx context.Context, req Request) []Result {
	total := len(req.AppIDs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	if req.Provider == "" {
		req.Provider = DefaultProvider
	}

	if err := p.fs.MkdirAll(req.StoreDir, 0755); err != nil {
		util.WarnLog("Cannot create icon store %s: %v", req.StoreDir, err)
	}

	var completed atomic.Int64
	var progressMu sync.Mutex

	wp := pool.New().WithMaxGoroutines(p.concurrency)
	for i, appID := range req.AppIDs {
		i, appID := i, appID
		wp.Go(func() {
			results[i] = p.acquireSafe(ctx, appID, req)

			// Serialized so observers see a non-decreasing count
			progressMu.Lock()
			n := completed.Add(1)
			if req.OnProgress != nil {
				req.OnProgress(int(n), total)
			}
			progressMu.Unlock()
		})
	}
	wp.Wait()

	return results
}

func (p *Pipeline) acquireSafe(ctx context.Context, appID string, req Request) (result Result) {
	start := time.Now()
	iconPath := IconPath(req.StoreDir, appID)

	defer func() {
		if r := recover(); r != nil {
			util.ErrorLog("Icon acquisition for %s panicked: %v", appID, r)
			result = Result{AppID: appID, Status: StatusInternalError, IconPath: iconPath}
		}
		result.Duration = time.Since(start)
		p.logger.LogAcquire(result.AppID, result.IconPath, result.SourceURL, string(result.Status),
			result.Success(), result.Bytes, result.Duration)
	}()

	return p.acquireOne(ctx, appID, iconPath, req)
}

func (p *Pipeline) acquireOne(ctx context.Context, appID, iconPath string, req Request) Result {
	result := Result{AppID: appID, IconPath: iconPath}

	if !isAppID(appID) {
		result.Status = StatusInvalidAppID
		return result
	}

	if info, err := p.fs.Stat(iconPath); err == nil && !info.IsDir() && info.Size() > 0 {
		if !req.Force {
			result.Status = StatusAlreadyExists
			return result
		}
		if err := p.fs.Remove(iconPath); err != nil {
			util.WarnLog("Cannot remove existing icon %s: %v", iconPath, err)
		}
	}

	body, url, err := p.firstValid(ctx, appID, p.candidates(appID, req.Provider))
	if err != nil {
		util.DebugLog("No candidate succeeded for %s: %v", appID, err)
		result.Status = StatusCDNFailed
		return result
	}
	result.SourceURL = url

	if err := p.writeIcon(iconPath, body); err != nil {
		util.WarnLog("Failed to save icon %s: %v", iconPath, err)
		result.Status = StatusSaveFailed
		return result
	}

	result.Status = StatusDownloaded
	result.Bytes = int64(len(body))
	return result
}

// firstValid tries candidates in order and returns the first validated body
func (p *Pipeline) firstValid(ctx context.Context, appID string, candidates []Candidate) ([]byte, string, error) {
	lastErr := fmt.Errorf("no candidates for %s: %w", appID, util.ErrNotFound)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		body, err := p.fetcher.Fetch(ctx, c.URL)
		if err == nil {
			_, err = ValidateImage(body)
		}
		if err == nil {
			return body, c.URL, nil
		}

		util.DebugLog("Candidate %d for %s rejected: %v", c.Ordinal, appID, err)
		p.logger.LogCandidate(appID, c.URL, err)
		lastErr = err
	}

	return nil, "", lastErr
}

// writeIcon replaces iconPath with data, never leaving a partial canonical file
func (p *Pipeline) writeIcon(iconPath string, data []byte) error {
	tempPath := iconPath + ".part"

	if err := afero.WriteFile(p.fs, tempPath, data, 0644); err != nil {
		p.fs.Remove(tempPath)
		return fmt.Errorf("write %s: %v: %w", tempPath, err, util.ErrIO)
	}

	if err := p.fs.Remove(iconPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.fs.Remove(tempPath)
		return fmt.Errorf("remove %s: %v: %w", iconPath, err, util.ErrIO)
	}

	if err := p.fs.Rename(tempPath, iconPath); err != nil {
		p.fs.Remove(tempPath)
		return fmt.Errorf("rename %s: %v: %w", tempPath, err, util.ErrIO)
	}

	return nil
}

func isAppID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
