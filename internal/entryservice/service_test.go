package entryservice

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
	"github.com/starford/orgblog/internal/snapshot"
	"github.com/starford/orgblog/internal/testutil"
)

func entry(id string, published time.Time, tags ...string) *models.Entry {
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
		Content:          []models.Block{models.Paragraph("body " + id)},
		RawSource:        "* DONE Title " + id,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestBlog(t)
	db := testutil.TestCatalog(t)

	entries := []*models.Entry{
		entry("a", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), "go"),
		entry("b", time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)),
		entry("c", time.Date(2023, 7, 1, 10, 0, 0, 0, time.UTC), "go"),
	}
	meta, tl, err := metadata.NewGenerator(nil).Generate(entries)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Sync(entries, meta, nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := snapshot.Save(store, "meta/current.yaml", snapshot.New(meta, tl)); err != nil {
		t.Fatal(err)
	}
	return NewService(store, db, "meta/current.yaml")
}

func TestListAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	items, total, err := svc.ListEntries(ctx, catalog.Filter{Tag: "go"}, 10, 0)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Errorf("items = %+v, total = %d", items, total)
	}

	d, err := svc.GetEntry(ctx, "b")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if d.Title != "Title b" || d.Version != 1 || d.Checksum == "" || d.Tags == nil {
		t.Errorf("detail = %+v", d)
	}
	if _, err := svc.GetEntry(ctx, "zzz"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	src, err := svc.Source(ctx, "a")
	if err != nil || src != "* DONE Title a" {
		t.Errorf("Source = %q, %v", src, err)
	}
	if _, err := svc.Source(ctx, "zzz"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTimeline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		q    TimelineQuery
		want []string
	}{
		{TimelineQuery{Year: 2024}, []string{"a", "b"}},
		{TimelineQuery{Year: 2024, Month: 3, Day: 20}, []string{"b"}},
		{TimelineQuery{Year: 2023, Month: 7}, []string{"c"}},
		{TimelineQuery{Year: 2022}, []string{}},
	}
	for _, tt := range tests {
		got, err := svc.Timeline(ctx, tt.q)
		if err != nil {
			t.Fatalf("Timeline(%+v): %v", tt.q, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Timeline(%+v) = %v, want %v", tt.q, got, tt.want)
		}
	}

	if _, err := svc.Timeline(ctx, TimelineQuery{Year: 2024, Day: 3}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	years, _ := svc.Years(ctx)
	if !reflect.DeepEqual(years, []int{2023, 2024}) {
		t.Errorf("years = %v", years)
	}
}
