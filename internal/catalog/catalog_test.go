package catalog

import (
	"errors"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "orgblog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testEntry(id, text string, published time.Time, tags ...string) *models.Entry {
	return &models.Entry{
		ID:               id,
		Title:            "Title " + id,
		Category:         models.CategoryTemporal,
		CreatedAt:        published.Add(-time.Hour),
		FirstPublishedAt: published,
		LatestUpdateAt:   published,
		FinishedHistory:  []time.Time{published},
		UserTags:         tags,
		InternalTags:     []models.InternalTag{models.TagBlog},
		Content:          []models.Block{models.Paragraph(text)},
		RawSource:        "* DONE Title " + id + "\n" + text,
		SourceFile:       "blog.org",
	}
}

func syncAll(t *testing.T, db *DB, bump []string, entries ...*models.Entry) *SyncResult {
	t.Helper()
	meta, _, err := metadata.NewGenerator(nil).Generate(entries)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	res, err := db.Sync(entries, meta, bump, time.Now())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return res
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM entry_tags`).Scan(&count); err != nil {
		t.Fatalf("entry_tags table missing: %v", err)
	}
}

func TestSync_VersionsAndRemoval(t *testing.T) {
	db := testDB(t)
	day := time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
	a := testEntry("a", "alpha text", day, "go")
	b := testEntry("b", "beta text", day.AddDate(0, 0, 1), "go", "sqlite")

	res := syncAll(t, db, nil, a, b)
	sort.Strings(res.Added)
	if !reflect.DeepEqual(res.Added, []string{"a", "b"}) || len(res.Removed) != 0 {
		t.Fatalf("first sync = %+v", res)
	}

	a.Content = []models.Block{models.Paragraph("alpha edited")}
	a.RawSource = "* DONE Title a\nalpha edited"
	res = syncAll(t, db, []string{"a"}, a)
	if !reflect.DeepEqual(res.Bumped, []string{"a"}) || !reflect.DeepEqual(res.Removed, []string{"b"}) {
		t.Fatalf("second sync = %+v", res)
	}

	versions, err := db.Versions()
	if err != nil {
		t.Fatalf("Versions: %v", err)
	}
	if !reflect.DeepEqual(versions, map[string]int{"a": 2}) {
		t.Errorf("versions = %v", versions)
	}
	raw, _ := db.RawSource("a")
	if raw != "* DONE Title a\nalpha edited" {
		t.Errorf("raw source = %q", raw)
	}
	if raw, _ := db.RawSource("b"); raw != "" {
		t.Errorf("removed entry still has source %q", raw)
	}
}

func TestGetEntry(t *testing.T) {
	db := testDB(t)
	day := time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
	syncAll(t, db, nil, testEntry("a", "alpha", day, "go", "Go"))

	row, err := db.GetEntry("a")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if row.Title != "Title a" || row.Version != 1 || row.Category != models.CategoryTemporal {
		t.Errorf("row = %+v", row)
	}
	if !row.FirstPublished.Equal(day) {
		t.Errorf("first published = %v, want %v", row.FirstPublished, day)
	}
	if !reflect.DeepEqual(row.Tags, []string{"go", "Go"}) {
		t.Errorf("tags = %v", row.Tags)
	}

	if _, err := db.GetEntry("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListEntriesAndTags(t *testing.T) {
	db := testDB(t)
	day := time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
	syncAll(t, db, nil,
		testEntry("old", "x", day, "go"),
		testEntry("new", "y", day.AddDate(0, 1, 0), "go", "sql"),
		testEntry("other", "z", day.AddDate(0, 0, 1)),
	)

	rows, total, err := db.ListEntries(Filter{Tag: "go"}, 10, 0)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 2 || len(rows) != 2 || rows[0].ID != "new" || rows[1].ID != "old" {
		t.Errorf("rows = %+v, total = %d", rows, total)
	}

	rows, total, err = db.ListEntries(Filter{}, 1, 1)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 3 || len(rows) != 1 || rows[0].ID != "other" {
		t.Errorf("page = %+v, total = %d", rows, total)
	}

	tags, err := db.Tags()
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if !reflect.DeepEqual(tags, map[string]int{"go": 2, "sql": 1}) {
		t.Errorf("tags = %v", tags)
	}
}

func TestSync_DropsTagsAndChecksumOfRemovedEntry(t *testing.T) {
	db := testDB(t)
	syncAll(t, db, nil, testEntry("del", "bye", time.Now().UTC(), "go"))
	res := syncAll(t, db, nil, testEntry("kept", "hi", time.Now().UTC()))
	if !reflect.DeepEqual(res.Removed, []string{"del"}) {
		t.Errorf("removed = %v", res.Removed)
	}
	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if _, ok := sums["del"]; ok || len(sums) != 1 {
		t.Errorf("checksums after removal = %v", sums)
	}
	tags, _ := db.Tags()
	if len(tags) != 0 {
		t.Errorf("tags after removal = %v", tags)
	}
}

func TestPlainText(t *testing.T) {
	blocks := []models.Block{
		models.Heading("Intro", 2),
		models.Paragraph("Hello."),
		models.Rule(),
		{Kind: models.BlockFenced, Fence: models.FenceSource, Lines: []string{"a := 1", "b := 2"}},
	}
	want := "Intro\nHello.\na := 1\nb := 2"
	if got := PlainText(blocks); got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}
