// Package build runs one compilation of the blog: parse every input, persist
// the metadata snapshot, compare it with the previous run and hand the
// outcome to the renderer.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/changes"
	"github.com/starford/orgblog/internal/diff"
	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
	"github.com/starford/orgblog/internal/parser"
	"github.com/starford/orgblog/internal/snapshot"
	"github.com/starford/orgblog/internal/storage"
)

// Paths names the files of one run, relative to the blog root.
type Paths struct {
	Inputs []string
	// Previous is read for comparison; New is always written.
	Previous string
	New      string
	// Rotate copies the new snapshot over Previous once the run succeeded,
	// so the next run compares against this one.
	Rotate bool
}

// Stats counts the work of one run.
type Stats struct {
	FilesParsed int `json:"files_parsed"`
	LinesParsed int `json:"lines_parsed"`
	Entries     int `json:"entries"`
}

// Report is the outcome of a successful run.
type Report struct {
	Stats     Stats
	Entries   []*models.Entry
	Metadata  metadata.Map
	Timeline  metadata.Timeline
	Templates Templates
	Changes   changes.Result
	// FirstRun is set when no previous snapshot existed.
	FirstRun bool
	// Diffs holds unified source diffs of version-bumped entries.
	Diffs map[string]string
	// CatalogDrift lists ids on which the catalog and the previous snapshot
	// disagree.
	CatalogDrift []string
	Catalog      *catalog.SyncResult
	Rendered     RenderStats
	Duration     time.Duration
}

// Coordinator owns the pipeline of one build.
type Coordinator struct {
	store     storage.Provider
	parser    *parser.Parser
	generator *metadata.Generator
	detector  *changes.Detector
	logger    *slog.Logger

	renderer Renderer
	catalog  catalog.Catalog
	showDiff bool
	now      func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRenderer sets the stage that turns the outcome into output files.
func WithRenderer(r Renderer) Option {
	return func(c *Coordinator) { c.renderer = r }
}

// WithCatalog keeps the SQLite catalog in step with every run.
func WithCatalog(cat catalog.Catalog) Option {
	return func(c *Coordinator) { c.catalog = cat }
}

// WithDiff logs a source diff of every updated entry. Needs a catalog.
func WithDiff(show bool) Option {
	return func(c *Coordinator) { c.showDiff = show }
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(store storage.Provider, p *parser.Parser, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		store:     store,
		parser:    p,
		generator: metadata.NewGenerator(logger),
		detector:  changes.NewDetector(logger),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run parses all inputs in order and classifies their entries. Any parse or
// integrity error aborts the run; anomalies of single entries do not.
func (c *Coordinator) Run(ctx context.Context, paths Paths) (*Report, error) {
	start := c.now()
	report := &Report{}

	for _, in := range paths.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, lines, ok, err := c.parseFile(in)
		if err != nil {
			c.logger.Error("build: parse failed", slog.String("file", in), slog.String("error", err.Error()))
			return nil, fmt.Errorf("build: %w", err)
		}
		if !ok {
			continue
		}
		report.Entries = append(report.Entries, entries...)
		report.Stats.FilesParsed++
		report.Stats.LinesParsed += lines
	}
	report.Stats.Entries = len(report.Entries)

	meta, timeline, err := c.generator.Generate(report.Entries)
	if err != nil {
		c.logger.Error("build: metadata failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("build: %w", err)
	}
	report.Metadata, report.Timeline = meta, timeline
	report.Templates = TemplateDefinitions(report.Entries, c.logger)

	snap := snapshot.New(meta, timeline)
	if err := snapshot.Save(c.store, paths.New, snap); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	var previous metadata.Map
	prev, err := snapshot.Load(c.store, paths.Previous)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if prev != nil {
		previous = prev.Metadata
	} else {
		report.FirstRun = true
		c.logger.Info("build: no previous metadata, treating as first run", slog.String("path", paths.Previous))
	}
	report.Changes = c.detector.Detect(meta, previous)

	if c.catalog != nil && prev != nil && paths.Rotate {
		if report.CatalogDrift, err = c.checkCatalog(previous); err != nil {
			return nil, fmt.Errorf("build: %w", err)
		}
	}
	versions, err := c.plannedVersions(report)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	if c.renderer != nil {
		stats, err := c.renderer.Render(ctx, RenderInput{
			Templates:          report.Templates,
			Entries:            report.Entries,
			Metadata:           meta,
			Timeline:           timeline,
			ToGenerate:         report.Changes.ToGenerate,
			ToFeed:             report.Changes.ToFeed,
			ToIncrementVersion: report.Changes.ToIncrementVersion,
			Versions:           versions,
		})
		if err != nil {
			return nil, fmt.Errorf("build: render: %w", err)
		}
		report.Rendered = stats
	}

	// The catalog only moves on after a successful render so a failed run
	// bumps the same versions again next time.
	if err := c.syncCatalog(report); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	if paths.Rotate && paths.Previous != paths.New {
		if err := snapshot.Save(c.store, paths.Previous, snap); err != nil {
			return nil, fmt.Errorf("build: rotate: %w", err)
		}
	}

	report.Duration = c.now().Sub(start)
	c.logger.Info("build: finished",
		slog.Int("files", report.Stats.FilesParsed),
		slog.Int("lines", report.Stats.LinesParsed),
		slog.Int("entries", report.Stats.Entries),
		slog.Int("generate", len(report.Changes.ToGenerate)),
		slog.Int("feed", len(report.Changes.ToFeed)),
		slog.Int("increment_version", len(report.Changes.ToIncrementVersion)),
		slog.Int("anomalies", len(report.Changes.Anomalies)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// parseFile parses one input. ok is false when the input was skipped.
func (c *Coordinator) parseFile(path string) (entries []*models.Entry, lines int, ok bool, err error) {
	info, err := c.store.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("build: skipping missing input", slog.String("file", path))
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	if info.IsDir() {
		c.logger.Warn("build: skipping directory input", slog.String("file", path))
		return nil, 0, false, nil
	}

	data, err := c.store.Read(path)
	if err != nil {
		return nil, 0, false, err
	}
	res, err := c.parser.Parse(path, data)
	if err != nil {
		return nil, 0, false, err
	}
	c.logger.Debug("build: parsed file",
		slog.String("file", path),
		slog.Int("lines", res.Lines),
		slog.Int("entries", len(res.Entries)))
	return res.Entries, res.Lines, true, nil
}

// plannedVersions returns the version every entry has once this run is
// recorded, and fills in the diffs of updated entries. The catalog is not
// changed.
func (c *Coordinator) plannedVersions(report *Report) (map[string]int, error) {
	if c.catalog == nil {
		return nil, nil
	}
	stored, err := c.catalog.Versions()
	if err != nil {
		return nil, err
	}
	bumped := make(map[string]bool, len(report.Changes.ToIncrementVersion))
	for _, id := range report.Changes.ToIncrementVersion {
		bumped[id] = true
	}
	versions := make(map[string]int, len(report.Entries))
	for _, e := range report.Entries {
		v, known := stored[e.ID]
		switch {
		case !known:
			v = 1
		case bumped[e.ID]:
			v++
		}
		versions[e.ID] = v
	}

	if c.showDiff {
		if err := c.collectDiffs(report); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func (c *Coordinator) collectDiffs(report *Report) error {
	report.Diffs = map[string]string{}
	byID := make(map[string]*models.Entry, len(report.Entries))
	for _, e := range report.Entries {
		byID[e.ID] = e
	}
	for _, id := range report.Changes.ToIncrementVersion {
		old, err := c.catalog.RawSource(id)
		if err != nil {
			return err
		}
		d, err := diff.Unified(id, old, byID[id].RawSource, diff.DefaultContext)
		if err != nil {
			return err
		}
		if d == "" {
			continue
		}
		report.Diffs[id] = d
		c.logger.Info("build: entry updated", slog.String("id", id), slog.String("diff", d))
	}
	return nil
}

// checkCatalog compares the catalog with the previous snapshot. With rotation
// both describe the last successful run, so ids whose checksums differ point
// at a catalog or snapshot replaced outside orgblog. They are logged; the
// run goes on.
func (c *Coordinator) checkCatalog(previous metadata.Map) ([]string, error) {
	sums, err := c.catalog.AllChecksums()
	if err != nil {
		return nil, err
	}
	var drift []string
	for id, sum := range sums {
		if m, ok := previous[id]; !ok || m.Checksum != sum {
			drift = append(drift, id)
		}
	}
	for id := range previous {
		if _, ok := sums[id]; !ok {
			drift = append(drift, id)
		}
	}
	if len(drift) == 0 {
		return nil, nil
	}
	sort.Strings(drift)
	c.logger.Warn("build: catalog out of step with previous metadata",
		slog.Int("entries", len(drift)),
		slog.String("ids", strings.Join(drift, ",")))
	return drift, nil
}

// syncCatalog records the run in the catalog.
func (c *Coordinator) syncCatalog(report *Report) error {
	if c.catalog == nil {
		return nil
	}
	res, err := c.catalog.Sync(report.Entries, report.Metadata, report.Changes.ToIncrementVersion, c.now())
	if err != nil {
		return err
	}
	report.Catalog = res
	for _, id := range res.Removed {
		c.logger.Info("build: entry removed", slog.String("id", id))
	}
	return nil
}
