// Package remedy runs the end-to-end icon repair flows: locate Steam,
// catalog games, acquire icons, rewrite shortcuts and optionally flush the
// OS icon cache.
package remedy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/franz/steam-icon-janitor/internal/catalog"
	"github.com/franz/steam-icon-janitor/internal/icons"
	"github.com/franz/steam-icon-janitor/internal/report"
	"github.com/franz/steam-icon-janitor/internal/shell"
	"github.com/franz/steam-icon-janitor/internal/shortcut"
	"github.com/franz/steam-icon-janitor/internal/steam"
	"github.com/franz/steam-icon-janitor/internal/store"
	"github.com/franz/steam-icon-janitor/internal/util"
)

// Locator finds the Steam installation
type Locator interface {
	Locate() (steam.Installation, error)
}

// Flusher invalidates the OS icon cache
type Flusher interface {
	Flush(ctx context.Context) (*shell.FlushResult, error)
}

// Service wires the pipeline components together
type Service struct {
	locator   Locator
	steamPath string
	resolver  *steam.LibraryResolver
	catalog   *catalog.Catalog
	pipeline  *icons.Pipeline
	rewriter  *shortcut.Rewriter
	flusher   Flusher
	store     *store.Store
	logger    *report.EventLogger
}

// Config holds service configuration. Nil components are built on Fs.
type Config struct {
	Fs        afero.Fs
	Locator   Locator
	SteamPath string // skips the locator when set
	Registry  steam.KeyValueStore
	Pipeline  *icons.Pipeline
	Flusher   Flusher
	Store     *store.Store // nil = no run history
	Logger    *report.EventLogger
}

// New creates a Service
func New(cfg *Config) *Service {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Locator == nil {
		cfg.Locator = steam.NewLocator(&steam.LocatorConfig{Fs: cfg.Fs, Registry: cfg.Registry})
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = icons.New(&icons.Config{Fs: cfg.Fs, Logger: cfg.Logger})
	}
	if cfg.Flusher == nil {
		cfg.Flusher = shell.NewInvalidator(&shell.Config{Fs: cfg.Fs, Logger: cfg.Logger})
	}

	return &Service{
		locator:   cfg.Locator,
		steamPath: cfg.SteamPath,
		resolver:  steam.NewLibraryResolver(cfg.Fs),
		catalog:   catalog.New(&catalog.Config{Fs: cfg.Fs, Logger: cfg.Logger}),
		pipeline:  cfg.Pipeline,
		rewriter:  shortcut.NewRewriter(&shortcut.Config{Fs: cfg.Fs, Logger: cfg.Logger}),
		flusher:   cfg.Flusher,
		store:     cfg.Store,
		logger:    cfg.Logger,
	}
}

// Environment is what discovery found on disk
type Environment struct {
	Installation steam.Installation
	Libraries    []steam.Library
	Games        []catalog.Game
}

// Game returns the cataloged game with appID
func (e *Environment) Game(appID string) (catalog.Game, bool) {
	for _, g := range e.Games {
		if g.AppID == appID {
			return g, true
		}
	}
	return catalog.Game{}, false
}

// Discover locates Steam, resolves its libraries and scans the catalog.
// The filesystem is re-read on every call.
func (s *Service) Discover() (*Environment, error) {
	var inst steam.Installation
	var err error
	if s.steamPath != "" {
		inst = steam.NewInstallation(s.steamPath, "")
	} else {
		inst, err = s.locator.Locate()
	}
	if err != nil {
		s.logger.LogLocate("", "", 0, err)
		return nil, err
	}

	env := &Environment{Installation: inst}
	env.Libraries = s.resolver.Resolve(inst)
	s.logger.LogLocate(inst.Path, inst.Source, len(env.Libraries), nil)

	env.Games = s.catalog.Scan(env.Libraries)
	return env, nil
}

// Options control a fix or reset run
type Options struct {
	Provider icons.Provider
	Force    bool
	DryRun   bool
	StoreDir string // "" = the installation's icon store

	// Flush requests an icon cache flush when something changed; Confirm
	// must also return true
	Flush   bool
	Confirm func() bool

	OnProgress icons.ProgressFunc
}

func (o *Options) storeDir(env *Environment) string {
	if o.StoreDir != "" {
		return o.StoreDir
	}
	return env.Installation.IconStoreDir()
}

// Fix repairs the Steam shortcuts found directly inside dirs. Every target
// descriptor is normalized to its canonical icon, even when the download
// failed, so a later successful fetch needs no rewrite.
func (s *Service) Fix(ctx context.Context, dirs []string, opts Options) (*Report, error) {
	env, err := s.Discover()
	if err != nil {
		return nil, err
	}
	storeDir := opts.storeDir(env)
	rep := newReport(ModeFix, env, storeDir, opts)

	for _, dir := range dirs {
		targets, err := s.rewriter.Scan(dir)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				util.DebugLog("Shortcut directory %s does not exist", dir)
			} else {
				util.WarnLog("Cannot scan %s: %v", dir, err)
			}
			continue
		}
		rep.Targets = append(rep.Targets, targets...)
	}
	util.InfoLog("Found %d Steam shortcuts in %d directories", len(rep.Targets), len(dirs))

	appIDs := uniqueAppIDs(rep.Targets)

	if opts.DryRun {
		for _, t := range rep.Targets {
			if shortcut.NeedsNormalize(t.Descriptor, icons.IconPath(storeDir, t.AppID)) {
				rep.Rewritten = append(rep.Rewritten, t.Descriptor.Path)
			}
		}
		rep.Pending = appIDs
		return rep, nil
	}

	run := s.beginRun(rep)

	rep.Results = s.pipeline.Acquire(ctx, icons.Request{
		AppIDs:     appIDs,
		StoreDir:   storeDir,
		Provider:   opts.Provider,
		Force:      opts.Force,
		OnProgress: opts.OnProgress,
	})

	// Icon downloads are done; rewrite descriptors before any flush
	for _, t := range rep.Targets {
		changed, err := s.rewriter.Normalize(t.Descriptor, icons.IconPath(storeDir, t.AppID))
		if err != nil {
			util.WarnLog("Failed to rewrite %s: %v", t.Descriptor.Path, err)
			rep.Errors = append(rep.Errors, err)
			continue
		}
		if changed {
			rep.Rewritten = append(rep.Rewritten, t.Descriptor.Path)
		}
	}

	s.maybeFlush(ctx, rep, opts)
	s.completeRun(run, rep)
	return rep, nil
}

// ReplaceAll deletes every Steam descriptor in dir, then acquires icons for
// all cataloged games and creates a fresh descriptor for each. Deletion
// finishes before any descriptor is created.
func (s *Service) ReplaceAll(ctx context.Context, dir string, opts Options) (*Report, error) {
	env, err := s.Discover()
	if err != nil {
		return nil, err
	}
	storeDir := opts.storeDir(env)
	rep := newReport(ModeReset, env, storeDir, opts)

	appIDs := make([]string, len(env.Games))
	for i, g := range env.Games {
		appIDs[i] = g.AppID
	}
	names := shortcut.FileNames(env.Games)

	if opts.DryRun {
		existing, err := s.rewriter.SteamDescriptors(dir)
		if err != nil && !errors.Is(err, util.ErrNotFound) {
			return nil, err
		}
		for _, d := range existing {
			rep.Deleted = append(rep.Deleted, filepath.Base(d.Path))
		}
		for _, g := range env.Games {
			rep.Created = append(rep.Created, filepath.Join(dir, names[g.AppID]))
		}
		rep.Pending = appIDs
		return rep, nil
	}

	run := s.beginRun(rep)

	previous := make(map[string][]byte)
	if existing, err := s.rewriter.SteamDescriptors(dir); err == nil {
		for _, d := range existing {
			previous[strings.ToLower(d.Path)] = d.Bytes()
		}
	}

	deleted, err := s.rewriter.DeleteAll(dir)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("delete shortcuts in %s: %w", dir, err)
	}
	rep.Deleted = deleted
	util.InfoLog("Deleted %d Steam shortcuts from %s", len(deleted), dir)

	rep.Results = s.pipeline.Acquire(ctx, icons.Request{
		AppIDs:     appIDs,
		StoreDir:   storeDir,
		Provider:   opts.Provider,
		Force:      opts.Force,
		OnProgress: opts.OnProgress,
	})

	for _, g := range env.Games {
		path, err := s.rewriter.CreateNamed(g, dir, names[g.AppID], storeDir)
		if err != nil {
			util.WarnLog("Failed to create shortcut for %s: %v", g.Name, err)
			rep.Errors = append(rep.Errors, err)
			continue
		}
		rep.Created = append(rep.Created, path)

		if before, ok := previous[strings.ToLower(path)]; ok && !bytes.Equal(before, shortcut.Fresh(path, g, storeDir).Bytes()) {
			rep.Refreshed = append(rep.Refreshed, path)
		}
	}

	s.maybeFlush(ctx, rep, opts)
	s.completeRun(run, rep)
	return rep, nil
}

// maybeFlush runs the flusher once when something changed and the caller confirmed
func (s *Service) maybeFlush(ctx context.Context, rep *Report, opts Options) {
	if !opts.Flush || !rep.Changed() {
		return
	}
	if opts.Confirm == nil || !opts.Confirm() {
		util.InfoLog("Icon cache flush skipped")
		return
	}

	result, err := s.flusher.Flush(ctx)
	if err != nil {
		util.WarnLog("Icon cache flush failed: %v", err)
		rep.Errors = append(rep.Errors, err)
		return
	}
	rep.Flush = result
}

func (s *Service) beginRun(rep *Report) *store.Run {
	if s.store == nil {
		return nil
	}

	run := &store.Run{
		Mode:      string(rep.Mode),
		Provider:  string(rep.Provider),
		SteamPath: rep.Installation.Path,
	}
	if err := s.store.BeginRun(run); err != nil {
		util.WarnLog("Run history unavailable: %v", err)
		return nil
	}
	rep.RunID = run.ID
	return run
}

func (s *Service) completeRun(run *store.Run, rep *Report) {
	if run == nil {
		return
	}

	acqs := make([]*store.Acquisition, len(rep.Results))
	for i, r := range rep.Results {
		acqs[i] = &store.Acquisition{
			RunID:     run.ID,
			AppID:     r.AppID,
			Name:      rep.gameName(r.AppID),
			Status:    string(r.Status),
			Success:   r.Success(),
			IconPath:  r.IconPath,
			SourceURL: r.SourceURL,
			Bytes:     r.Bytes,
		}
	}
	if err := s.store.InsertAcquisitions(acqs); err != nil {
		util.WarnLog("Failed to record acquisitions: %v", err)
	}

	run.Total = len(rep.Results)
	run.Succeeded = rep.Succeeded()
	run.Failed = rep.Failed()
	run.ShortcutsChanged = len(rep.Rewritten) + len(rep.Created)
	run.CacheFlushed = rep.Flush != nil
	if err := s.store.CompleteRun(run); err != nil {
		util.WarnLog("Failed to record run: %v", err)
	}
}

func uniqueAppIDs(targets []shortcut.Target) []string {
	seen := make(map[string]bool, len(targets))
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		if seen[t.AppID] {
			continue
		}
		seen[t.AppID] = true
		ids = append(ids, t.AppID)
	}
	return ids
}
