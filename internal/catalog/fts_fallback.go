//go:build !sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the entries table is searched with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search matches the query as one substring of title, body or tags, most
// recently updated entries first.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, body
		FROM entries
		WHERE title LIKE ? OR body LIKE ? OR tags LIKE ?
		ORDER BY latest_update DESC, id
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	out, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Snippet = excerpt(out[i].Snippet, query, snippetRadius)
	}
	return out, nil
}
