package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	ID             string
	Title          string
	Category       models.Category
	Checksum       string
	Version        int
	Tags           []string
	Hidden         bool
	SourceFile     string
	Created        time.Time
	FirstPublished time.Time
	LatestUpdate   time.Time
	UpdatedAt      time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// Filter narrows ListEntries. Zero fields match everything.
type Filter struct {
	Tag      string
	Category models.Category
}

// SyncResult lists what a Sync changed.
type SyncResult struct {
	Added   []string
	Bumped  []string
	Removed []string
}

// Sync makes the catalog mirror one build: every entry is upserted, the ids
// in bump get their version incremented and entries missing from the build
// are deleted. It runs in one transaction.
func (db *DB) Sync(entries []*models.Entry, meta metadata.Map, bump []string, now time.Time) (*SyncResult, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	known, err := ids(tx)
	if err != nil {
		return nil, err
	}

	bumps := make(map[string]bool, len(bump))
	for _, id := range bump {
		bumps[id] = true
	}

	res := &SyncResult{}
	current := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		current[e.ID] = struct{}{}
		inc := 0
		if _, ok := known[e.ID]; !ok {
			res.Added = append(res.Added, e.ID)
		} else if bumps[e.ID] {
			inc = 1
			res.Bumped = append(res.Bumped, e.ID)
		}
		if err := upsertEntry(tx, e, meta[e.ID].Checksum, inc, now); err != nil {
			return nil, err
		}
	}

	for id := range known {
		if _, ok := current[id]; ok {
			continue
		}
		if err := deleteEntry(tx, id); err != nil {
			return nil, err
		}
		res.Removed = append(res.Removed, id)
	}
	sort.Strings(res.Removed)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: commit: %w", err)
	}
	return res, nil
}

func ids(tx *sql.Tx) (map[string]struct{}, error) {
	rows, err := tx.Query(`SELECT id FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func upsertEntry(tx *sql.Tx, e *models.Entry, checksum string, inc int, now time.Time) error {
	tags := e.UserTags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	body := PlainText(e.Content)

	_, err := tx.Exec(`
		INSERT INTO entries (id, title, category, checksum, version, tags, hidden, source_file,
		                     body, raw_source, created, first_published, latest_update, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title           = excluded.title,
			category        = excluded.category,
			checksum        = excluded.checksum,
			version         = entries.version + ?,
			tags            = excluded.tags,
			hidden          = excluded.hidden,
			source_file     = excluded.source_file,
			body            = excluded.body,
			raw_source      = excluded.raw_source,
			created         = excluded.created,
			first_published = excluded.first_published,
			latest_update   = excluded.latest_update,
			updated_at      = excluded.updated_at
	`, e.ID, e.Title, string(e.Category), checksum, string(tagsJSON), e.Hidden(), e.SourceFile,
		body, e.RawSource, e.CreatedAt, e.FirstPublishedAt, e.LatestUpdateAt, now, inc)
	if err != nil {
		return fmt.Errorf("catalog: upsert entry %s: %w", e.ID, err)
	}

	if err := ftsUpsert(tx, e.ID, e.Title, body, tags); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM entry_tags WHERE entry_id = ?`, e.ID)
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO entry_tags (entry_id, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.Exec(e.ID, tag); err != nil {
				return fmt.Errorf("catalog: insert tag: %w", err)
			}
		}
	}
	return nil
}

func deleteEntry(tx *sql.Tx, id string) error {
	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM entry_tags WHERE entry_id = ?`, id)
	if _, err := tx.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("catalog: delete entry %s: %w", id, err)
	}
	return nil
}

const entryColumns = `id, title, category, checksum, version, tags, hidden, source_file,
	created, first_published, latest_update, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*EntryRow, error) {
	var (
		r        EntryRow
		category string
		tagsJSON string
		created  sql.NullTime
		first    sql.NullTime
		latest   sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.Title, &category, &r.Checksum, &r.Version, &tagsJSON, &r.Hidden,
		&r.SourceFile, &created, &first, &latest, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Category = models.Category(category)
	r.Created, r.FirstPublished, r.LatestUpdate = created.Time, first.Time, latest.Time
	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		return nil, fmt.Errorf("catalog: decode tags of %s: %w", r.ID, err)
	}
	return &r, nil
}

// GetEntry returns one entry or apperr.ErrNotFound.
func (db *DB) GetEntry(id string) (*EntryRow, error) {
	row := db.conn.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	r, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get entry: %w", err)
	}
	return r, nil
}

// RawSource returns the stored source text of an entry, or "" if unknown.
func (db *DB) RawSource(id string) (string, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT raw_source FROM entries WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: raw source: %w", err)
	}
	return raw, nil
}

// ListEntries returns a page of entries, newest publication first, and the
// total number of matches.
func (db *DB) ListEntries(filter Filter, limit, offset int) ([]EntryRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		where []string
		args  []any
	)
	if filter.Tag != "" {
		where = append(where, `id IN (SELECT entry_id FROM entry_tags WHERE tag = ?)`)
		args = append(args, filter.Tag)
	}
	if filter.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, string(filter.Category))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count entries: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+entryColumns+` FROM entries`+clause+
		` ORDER BY first_published DESC, id LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		r, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// Tags returns how many entries carry each user tag.
func (db *DB) Tags() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT tag, count(*) FROM entry_tags GROUP BY tag`)
	if err != nil {
		return nil, fmt.Errorf("catalog: tags: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			tag string
			n   int
		)
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		out[tag] = n
	}
	return out, rows.Err()
}

// Versions returns the version counter of every entry.
func (db *DB) Versions() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT id, version FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("catalog: versions: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			v  int
		)
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum of every entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
