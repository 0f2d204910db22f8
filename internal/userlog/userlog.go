// Package userlog keeps the persistent, human-reviewable log of problems
// found during builds.
//
// The log is itself an outline document: every message becomes a dated
// sub-heading carrying its severity as keyword. It is only ever appended to;
// users prune handled items by hand.
package userlog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/orgblog/internal/storage"
	"github.com/starford/orgblog/internal/timestamp"
)

// Severity is the keyword of a log heading.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// SeverityOf maps a slog level to a severity keyword.
func SeverityOf(level slog.Level) Severity {
	switch {
	case level >= slog.LevelError:
		return SeverityError
	case level >= slog.LevelWarn:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

const header = "# -*- mode: org; -*-\n#+TITLE: orgblog messages\n\n* Messages\n"

// Field is one detail line of a message.
type Field struct {
	Key   string
	Value string
}

// Log appends messages to one file below the blog root.
type Log struct {
	store storage.Provider
	path  string
	now   func() time.Time
	mu    sync.Mutex
}

// New creates a Log writing to path.
func New(store storage.Provider, path string) *Log {
	return &Log{store: store, path: path, now: time.Now}
}

// Path returns the log file location relative to the blog root.
func (l *Log) Path() string { return l.path }

// Append writes one message. The file and its header are created on first use.
func (l *Log) Append(sev Severity, at time.Time, message string, fields ...Field) error {
	if at.IsZero() {
		at = l.now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s\n", sev, timestamp.Format(at), oneLine(message))
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s :: %s\n", f.Key, oneLine(f.Value))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		if err := l.store.Append(l.path, []byte(header)); err != nil {
			return fmt.Errorf("userlog: create: %w", err)
		}
	}
	if err := l.store.Append(l.path, []byte(b.String())); err != nil {
		return fmt.Errorf("userlog: append: %w", err)
	}
	return nil
}

// oneLine keeps multi-line values from breaking the outline structure.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
