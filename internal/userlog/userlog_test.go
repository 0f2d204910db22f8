package userlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/starford/orgblog/internal/storage"
)

func newTestLog(t *testing.T) (*Log, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	l := New(store, "logs/messages.org")
	l.now = func() time.Time { return time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC) }
	return l, store
}

func read(t *testing.T, store *storage.FS, path string) string {
	t.Helper()
	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return string(data)
}

func TestAppend(t *testing.T) {
	l, store := newTestLog(t)
	if err := l.Append(SeverityWarn, time.Time{}, "first\nmessage", Field{Key: "id", Value: "case8"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(SeverityError, time.Time{}, "second"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := read(t, store, "logs/messages.org")
	want := header +
		"** WARN [2024-03-05 Tue 09:15] first message\n" +
		"- id :: case8\n" +
		"** ERROR [2024-03-05 Tue 09:15] second\n"
	if got != want {
		t.Errorf("log =\n%s\nwant\n%s", got, want)
	}
}

func TestHandler_ForwardsWarnings(t *testing.T) {
	l, store := newTestLog(t)
	var console bytes.Buffer
	inner := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewHandler(inner, l)).With(slog.String("run", "1"))

	logger.Info("build: started")
	logger.Warn("changes: created changed", slog.String("category", CategoryAnomaly), slog.String("id", "moved"))
	logger.Error("build: parse failed", slog.String("error", "boom"))

	out := read(t, store, "logs/messages.org")
	if strings.Contains(out, "started") {
		t.Error("info record reached the user log")
	}
	if !strings.Contains(out, "** WARN") || !strings.Contains(out, "- id :: moved") || !strings.Contains(out, "- run :: 1") {
		t.Errorf("warning missing from user log:\n%s", out)
	}
	if strings.Contains(out, "category") {
		t.Errorf("category attribute written to user log:\n%s", out)
	}
	if !strings.Contains(out, "** ERROR") {
		t.Errorf("error missing from user log:\n%s", out)
	}

	if strings.Contains(console.String(), "created changed") {
		t.Error("anomaly shown on console without debug level")
	}
	if !strings.Contains(console.String(), "parse failed") {
		t.Error("error missing from console")
	}
}

func TestHandler_VerboseShowsAnomalies(t *testing.T) {
	l, _ := newTestLog(t)
	var console bytes.Buffer
	inner := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.New(NewHandler(inner, l)).Warn("changes: confused", slog.String("category", CategoryAnomaly))

	if !strings.Contains(console.String(), "confused") {
		t.Error("anomaly hidden from verbose console")
	}
}

func TestSeverityOf(t *testing.T) {
	tests := map[slog.Level]Severity{
		slog.LevelDebug: SeverityInfo,
		slog.LevelInfo:  SeverityInfo,
		slog.LevelWarn:  SeverityWarn,
		slog.LevelError: SeverityError,
	}
	for level, want := range tests {
		if got := SeverityOf(level); got != want {
			t.Errorf("SeverityOf(%v) = %s, want %s", level, got, want)
		}
	}
}
