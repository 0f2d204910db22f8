// Package testutil provides shared test helpers for setting up blogs and catalogs.
package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "orgblog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBlog creates a temporary blog directory with a storage.Provider.
func TestBlog(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content below the blog root or fails the test.
func WriteFile(t *testing.T, store storage.Provider, path, content string) {
	t.Helper()
	if err := store.Write(path, []byte(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Entry is a qualifying blog entry in outline markup.
type Entry struct {
	Level    int
	Title    string
	Tags     []string // "blog" is always added
	ID       string
	Created  string   // e.g. "[2024-03-01 Fri 10:00]"
	Finished []string // logbook timestamps, newest first
	Body     string
}

// String renders the entry with its drawers.
func (e Entry) String() string {
	level := e.Level
	if level == 0 {
		level = 1
	}
	created := e.Created
	if created == "" {
		created = "[2024-03-01 Fri 10:00]"
	}
	finished := e.Finished
	if len(finished) == 0 {
		finished = []string{"[2024-03-02 Sat 18:30]"}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("*", level) + " DONE " + e.Title + "  :" + strings.Join(append([]string{"blog"}, e.Tags...), ":") + ":\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(":ID:       " + e.ID + "\n")
	b.WriteString(":CREATED:  " + created + "\n")
	b.WriteString(":END:\n")
	b.WriteString(":LOGBOOK:\n")
	for _, ts := range finished {
		b.WriteString("- State \"DONE\"       from \"NEXT\"       " + ts + "\n")
	}
	b.WriteString(":END:\n")
	if e.Body != "" {
		b.WriteString("\n" + strings.TrimSuffix(e.Body, "\n") + "\n")
	}
	return b.String()
}
