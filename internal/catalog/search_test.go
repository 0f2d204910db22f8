//go:build !sqlite_fts5

package catalog

import (
	"testing"
	"time"
)

func TestSearch_Fallback(t *testing.T) {
	db := testDB(t)
	syncAll(t, db, nil,
		testEntry("a", "the quick brown fox", time.Now().UTC()),
		testEntry("b", "lazy dog", time.Now().UTC()),
	)

	results, err := db.Search("Brown", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("results = %+v", results)
	}
	if want := "the quick <b>brown</b> fox"; results[0].Snippet != want {
		t.Errorf("snippet = %q, want %q", results[0].Snippet, want)
	}
}

func TestSearch_FallbackBlankQuery(t *testing.T) {
	db := testDB(t)
	syncAll(t, db, nil, testEntry("a", "anything", time.Now().UTC()))

	results, err := db.Search("   ", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("Search(blank) = %+v, %v", results, err)
	}
}
