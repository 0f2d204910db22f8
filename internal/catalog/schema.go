// Package catalog keeps a SQLite catalog of published entries: their version
// counters, tags and searchable text. It survives between builds and is what
// the inspection API and the MCP server read.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	checksum        TEXT NOT NULL DEFAULT '',
	version         INTEGER NOT NULL DEFAULT 1,
	tags            TEXT NOT NULL DEFAULT '[]',
	hidden          INTEGER NOT NULL DEFAULT 0,
	source_file     TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL DEFAULT '',
	raw_source      TEXT NOT NULL DEFAULT '',
	created         DATETIME,
	first_published DATETIME,
	latest_update   DATETIME,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entry_tags (
	entry_id TEXT NOT NULL,
	tag      TEXT NOT NULL,
	UNIQUE(entry_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag);
`

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
