// Package metadata derives the per-entry fingerprints and the publish timeline
// from parsed entries.
package metadata

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/checksum"
	"github.com/starford/orgblog/internal/models"
)

// Map is the metadata of every entry keyed by id.
type Map map[string]models.EntryMetadata

// IDs returns the keys of m, sorted.
func (m Map) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IntegrityError reports entries that make the whole document set unusable.
type IntegrityError struct {
	ID      string
	Sources []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("metadata: duplicate id %q in %s", e.ID, strings.Join(e.Sources, ", "))
}

func (e *IntegrityError) Unwrap() error { return apperr.ErrIntegrity }

// Generator builds metadata snapshots.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate fingerprints every entry and files the visible ones into a timeline.
// A duplicate id anywhere in entries fails the whole call.
func (g *Generator) Generate(entries []*models.Entry) (Map, Timeline, error) {
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if prev, dup := seen[e.ID]; dup {
			return nil, nil, &IntegrityError{ID: e.ID, Sources: []string{prev, e.SourceFile}}
		}
		seen[e.ID] = e.SourceFile
	}

	meta := make(Map, len(entries))
	timeline := Timeline{}
	for _, e := range entries {
		if err := validate(e); err != nil {
			return nil, nil, err
		}
		sum, err := checksum.Entry(e.Title, e.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata: entry %q: %w", e.ID, err)
		}
		meta[e.ID] = models.EntryMetadata{
			Created:        e.CreatedAt,
			LatestUpdate:   e.LatestUpdateAt,
			FirstPublished: e.FirstPublishedAt,
			Checksum:       sum,
			Title:          e.Title,
			Category:       e.Category,
		}
		if e.Hidden() {
			g.logger.Debug("metadata: hidden entry kept out of timeline", slog.String("id", e.ID))
			continue
		}
		timeline.Add(publishedAt(e), e.ID)
	}
	timeline.sortDays()
	return meta, timeline, nil
}

// validate re-checks the fields the parser guarantees for complete entries.
func validate(e *models.Entry) error {
	var missing []string
	if e.ID == "" {
		missing = append(missing, "id")
	}
	if e.Title == "" {
		missing = append(missing, "title")
	}
	if e.CreatedAt.IsZero() {
		missing = append(missing, "created")
	}
	if e.LatestUpdateAt.IsZero() {
		missing = append(missing, "latest update")
	}
	if e.FirstPublishedAt.IsZero() {
		missing = append(missing, "first published")
	}
	if len(missing) > 0 {
		return fmt.Errorf("metadata: entry %q lacks %s: %w", e.ID, strings.Join(missing, ", "), apperr.ErrInvalid)
	}
	return nil
}

// publishedAt is the day an entry appears under: the first publication,
// or the oldest finished timestamp when that is unset.
func publishedAt(e *models.Entry) time.Time {
	if !e.FirstPublishedAt.IsZero() || len(e.FinishedHistory) == 0 {
		return e.FirstPublishedAt
	}
	oldest := e.FinishedHistory[0]
	for _, t := range e.FinishedHistory[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest
}
