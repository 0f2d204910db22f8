package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/orgblog/internal/models"
)

const (
	defaultSearchLimit = 20
	// snippetRadius is the number of bytes kept on each side of a match.
	snippetRadius = 60
)

// PlainText flattens content blocks into searchable text.
func PlainText(blocks []models.Block) string {
	var parts []string
	for _, b := range blocks {
		switch b.Kind {
		case models.BlockParagraph, models.BlockHeading:
			parts = append(parts, b.Text)
		case models.BlockImage:
			if b.Image != nil {
				parts = append(parts, strings.TrimSpace(b.Image.Description+" "+b.Image.Caption))
			}
		case models.BlockRule:
		default:
			parts = append(parts, strings.Join(b.Lines, "\n"))
		}
	}
	return strings.Join(parts, "\n")
}

// scanResults reads (id, title, snippet) rows and closes them.
func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("catalog: scan search result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// excerpt cuts body around the first case-insensitive occurrence of query
// and wraps it in <b></b>, like the FTS5 snippet function. Without an
// occurrence in body (the match was in the title or tags) the start of
// body is returned.
func excerpt(body, query string, radius int) string {
	body = strings.Join(strings.Fields(body), " ")
	i := -1
	if lower := strings.ToLower(body); len(lower) == len(body) {
		i = strings.Index(lower, strings.ToLower(query))
	}
	if i < 0 {
		if len(body) <= 2*radius {
			return body
		}
		return body[:runeStart(body, 2*radius)] + "..."
	}

	j := i + len(query)
	var b strings.Builder
	start := i - radius
	if start > 0 {
		start = runeStart(body, start)
		b.WriteString("...")
	} else {
		start = 0
	}
	b.WriteString(body[start:i])
	b.WriteString("<b>" + body[i:j] + "</b>")
	if end := j + radius; end < len(body) {
		b.WriteString(body[j:runeStart(body, end)])
		b.WriteString("...")
	} else {
		b.WriteString(body[j:])
	}
	return b.String()
}

// runeStart moves i back to the first byte of the rune it points into.
func runeStart(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
