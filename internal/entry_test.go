package internal

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/orgblog/internal/build"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/changes"
	"github.com/starford/orgblog/internal/testutil"
)

func testConfig(t *testing.T, doc string) *Config {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "blog.org"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	cfg.Blog.Root = root
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_Build(t *testing.T) {
	doc := testutil.Entry{Title: "Hello", ID: "hello", Body: "First post."}.String()
	cfg := testConfig(t, doc)

	if err := Run(context.Background(), WithConfig(cfg), WithCommand(CommandBuild)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, rel := range []string{
		cfg.Blog.NewMetadata,
		cfg.Blog.PreviousMetadata,
		filepath.Join(cfg.Blog.Manifest, "manifest.yaml"),
		cfg.Blog.Catalog,
	} {
		if _, err := os.Stat(filepath.Join(cfg.Blog.Root, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
}

func TestRun_BuildParseErrorReachesUserLog(t *testing.T) {
	doc := testutil.Entry{Title: "Broken", ID: "broken", Body: "#+BEGIN_SRC go\nx := 1"}.String()
	cfg := testConfig(t, doc)

	err := Run(context.Background(), WithConfig(cfg))
	if err == nil {
		t.Fatal("expected parse error")
	}
	data, readErr := os.ReadFile(filepath.Join(cfg.Blog.Root, cfg.Blog.UserLog))
	if readErr != nil {
		t.Fatalf("user log: %v", readErr)
	}
	if !strings.Contains(string(data), "** ERROR") {
		t.Errorf("user log lacks the error:\n%s", data)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	cfg := testConfig(t, "")
	if err := Run(context.Background(), WithConfig(cfg), WithCommand("publish")); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestSummarize(t *testing.T) {
	sum := summarize(nil, errors.New("boom"))
	if sum.Error != "boom" || sum.Generated != nil {
		t.Errorf("failed summary = %+v", sum)
	}

	report := &build.Report{
		Changes: changes.Result{
			ToGenerate:         []string{"a", "b"},
			ToFeed:             []string{"a"},
			ToIncrementVersion: []string{"b"},
			Anomalies:          []changes.Anomaly{{ID: "c"}},
		},
		Catalog: &catalog.SyncResult{Removed: []string{"gone"}},
	}
	sum = summarize(report, nil)
	if len(sum.Generated) != 2 || len(sum.Feed) != 1 || len(sum.Bumped) != 1 ||
		sum.Anomalies != 1 || len(sum.Removed) != 1 || sum.Error != "" {
		t.Errorf("summary = %+v", sum)
	}
}
