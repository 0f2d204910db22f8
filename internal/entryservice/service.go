// Package entryservice answers questions about the published blog from the
// catalog and the latest metadata snapshot. It backs the HTTP API and the MCP
// server.
package entryservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/models"
	"github.com/starford/orgblog/internal/snapshot"
	"github.com/starford/orgblog/internal/storage"
)

// EntryListItem is a lightweight item in a list response.
type EntryListItem struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Category       models.Category `json:"category"`
	Version        int             `json:"version"`
	Tags           []string        `json:"tags"`
	Hidden         bool            `json:"hidden,omitempty"`
	FirstPublished time.Time       `json:"first_published"`
	LatestUpdate   time.Time       `json:"latest_update"`
}

// EntryDetail is the full representation of an entry.
type EntryDetail struct {
	EntryListItem
	Checksum   string    `json:"checksum"`
	SourceFile string    `json:"source_file"`
	Created    time.Time `json:"created"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TimelineQuery selects a year, a month or a day. Month and Day are optional.
type TimelineQuery struct {
	Year  int
	Month int
	Day   int
}

// Validate checks the ranges of the query.
func (q TimelineQuery) Validate() error {
	switch {
	case q.Year < 1:
		return fmt.Errorf("year %d: %w", q.Year, apperr.ErrInvalid)
	case q.Month < 0 || q.Month > 12:
		return fmt.Errorf("month %d: %w", q.Month, apperr.ErrInvalid)
	case q.Day < 0 || q.Day > 31:
		return fmt.Errorf("day %d: %w", q.Day, apperr.ErrInvalid)
	case q.Day > 0 && q.Month == 0:
		return fmt.Errorf("day without month: %w", apperr.ErrInvalid)
	}
	return nil
}

// Service coordinates catalog and snapshot reads.
type Service struct {
	store        storage.Provider
	db           catalog.Catalog
	snapshotPath string
}

// NewService creates a new entry service. snapshotPath is the metadata
// snapshot written by the latest build.
func NewService(store storage.Provider, db catalog.Catalog, snapshotPath string) *Service {
	return &Service{store: store, db: db, snapshotPath: snapshotPath}
}

// ListEntries returns paginated entries with optional tag and category filters.
func (s *Service) ListEntries(_ context.Context, filter catalog.Filter, limit, offset int) ([]EntryListItem, int, error) {
	rows, total, err := s.db.ListEntries(filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]EntryListItem, len(rows))
	for i, r := range rows {
		items[i] = listItem(r)
	}
	return items, total, nil
}

// GetEntry returns one entry or apperr.ErrNotFound.
func (s *Service) GetEntry(_ context.Context, id string) (*EntryDetail, error) {
	r, err := s.db.GetEntry(id)
	if err != nil {
		return nil, err
	}
	return &EntryDetail{
		EntryListItem: listItem(*r),
		Checksum:      r.Checksum,
		SourceFile:    r.SourceFile,
		Created:       r.Created,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

// Source returns the outline-markup source of an entry.
func (s *Service) Source(_ context.Context, id string) (string, error) {
	raw, err := s.db.RawSource(id)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", apperr.ErrNotFound
	}
	return raw, nil
}

// Timeline returns the ids published in the queried period, in calendar order.
func (s *Service) Timeline(_ context.Context, q TimelineQuery) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	snap, err := snapshot.Load(s.store, s.snapshotPath)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, apperr.ErrNotFound
	}
	var ids []string
	switch {
	case q.Day > 0:
		ids = snap.Timeline.Day(q.Year, time.Month(q.Month), q.Day)
	case q.Month > 0:
		ids = snap.Timeline.Month(q.Year, time.Month(q.Month))
	default:
		ids = snap.Timeline.Year(q.Year)
	}
	return nonNilSlice(ids), nil
}

// Years returns the years holding published entries.
func (s *Service) Years(_ context.Context) ([]int, error) {
	snap, err := snapshot.Load(s.store, s.snapshotPath)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return []int{}, nil
	}
	return snap.Timeline.Years(), nil
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Tags returns the number of entries per user tag.
func (s *Service) Tags(_ context.Context) (map[string]int, error) {
	return s.db.Tags()
}

func listItem(r catalog.EntryRow) EntryListItem {
	return EntryListItem{
		ID:             r.ID,
		Title:          r.Title,
		Category:       r.Category,
		Version:        r.Version,
		Tags:           nonNilSlice(r.Tags),
		Hidden:         r.Hidden,
		FirstPublished: r.FirstPublished,
		LatestUpdate:   r.LatestUpdate,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
