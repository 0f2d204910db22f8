// Package parser turns outline-markup documents into blog entries.
//
// Only a restricted grammar is understood: a heading qualifies as an entry when
// it carries the finished keyword and the blog tag, and everything outside such
// subtrees is skipped. Inside an entry, a line-driven state machine structures
// the content into blocks and keeps the verbatim source of the entry.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/orgblog/internal/models"
)

// Result holds the output of parsing one document.
type Result struct {
	Entries []*models.Entry
	Lines   int
}

// Parser parses documents with a fixed grammar configuration.
type Parser struct {
	cfg     Config
	grammar *grammar
	logger  *slog.Logger
}

// New creates a parser for the given grammar.
func New(cfg Config, logger *slog.Logger) (*Parser, error) {
	g, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{cfg: cfg, grammar: g, logger: logger}, nil
}

// Parse parses a whole document. name is only used for error messages and
// Entry.SourceFile. Any structural violation aborts with a *ParseError.
func (p *Parser) Parse(name string, data []byte) (*Result, error) {
	lines := splitLines(string(data))
	f := &fsm{
		Parser: p,
		file:   name,
		tags:   newTagClassifier(p.cfg),
		state:  stateSearchingHeader,
	}
	for i, line := range lines {
		f.lineNo = i + 1
		if err := f.feed(line); err != nil {
			return nil, err
		}
	}
	if err := f.finish(); err != nil {
		return nil, err
	}
	return &Result{Entries: f.entries, Lines: len(lines)}, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// fsm is the working state of one Parse call.
type fsm struct {
	*Parser

	file   string
	lineNo int
	tags   *tagClassifier

	state state
	// resume is the state to return to when a drawer closes.
	resume state
	entry  *entryBuilder
	// skipLevel is the level of the excluded heading being skipped.
	skipLevel int
	// open is the fenced block, list, table or colon block being collected.
	open      *models.Block
	listWidth int

	// text is set while handling a paragraph line; prevText keeps it for
	// the next line so only directly adjacent text lines join.
	text, prevText bool
	// omit keeps the current line out of the entry's raw source.
	omit bool

	// captured since the last blank line
	pendingName    string
	pendingCaption string
	pendingAttrs   map[string]string

	entries []*models.Entry
}

// feed runs one line through the state machine and records it in the raw
// source of the entry it belongs to.
func (f *fsm) feed(line string) error {
	current := f.entry
	f.omit = false
	f.text = false
	if err := f.step(line); err != nil {
		return err
	}
	if current != nil && current == f.entry && !f.omit {
		current.raw = append(current.raw, line)
	}
	f.prevText = f.text
	return nil
}

// step is the transition function: it dispatches the line on the current state.
func (f *fsm) step(line string) error {
	switch f.state {
	case stateSearchingHeader:
		return f.searchHeader(line)
	case stateHeaderFound, stateEntryContent:
		return f.entryContent(line)
	case statePropertyDrawer:
		return f.propertyDrawer(line)
	case stateLogbookDrawer:
		return f.logbookDrawer(line)
	case stateIgnoredDrawer:
		return f.ignoredDrawer(line)
	case stateBlock:
		return f.inBlock(line)
	case stateList:
		return f.inList(line)
	case stateTable:
		return f.inTable(line)
	case stateColonBlock:
		return f.inColonBlock(line)
	case stateSkippingExcludedSubtree:
		return f.skipExcluded(line)
	default:
		return f.errorf("unknown parser state %s", f.state)
	}
}

func (f *fsm) searchHeader(line string) error {
	h, ok := f.matchHeading(line)
	if !ok {
		return nil
	}
	if !h.qualifies(f.cfg.FinishedKeyword) {
		f.logger.Debug("parser: skipping heading",
			slog.String("file", f.file),
			slog.Int("line", f.lineNo),
			slog.String("title", h.title))
		return nil
	}
	f.entry = newEntryBuilder(h)
	f.entry.raw = append(f.entry.raw, line)
	f.state = stateHeaderFound
	f.clearCaptures()
	return nil
}

// onHeading handles a heading met inside an entry: deeper headings become
// content, the others end the entry.
func (f *fsm) onHeading(h heading, line string) error {
	if h.level > f.entry.level {
		if h.excluded {
			f.state = stateSkippingExcludedSubtree
			f.skipLevel = h.level
			f.omit = true
			return nil
		}
		f.entry.append(models.Heading(h.title, h.level-f.entry.level+1))
		f.state = stateEntryContent
		f.clearCaptures()
		return nil
	}
	f.finalize()
	return f.searchHeader(line)
}

func (f *fsm) skipExcluded(line string) error {
	if h, ok := f.matchHeading(line); ok && h.level <= f.skipLevel {
		f.state = stateEntryContent
		return f.onHeading(h, line)
	}
	f.omit = true
	return nil
}

// finalize closes the current entry and keeps it when it is complete.
func (f *fsm) finalize() {
	f.closeOpen()
	entry, missing := f.entry.build(f.file)
	if len(missing) > 0 {
		f.logger.Warn("parser: dropping incomplete entry",
			slog.String("file", f.file),
			slog.Int("line", f.lineNo),
			slog.String("title", f.entry.title),
			slog.String("id", f.entry.id),
			slog.String("missing", strings.Join(missing, ", ")))
	} else {
		f.entries = append(f.entries, entry)
	}
	f.entry = nil
	f.open = nil
	f.state = stateSearchingHeader
	f.clearCaptures()
}

// finish ends the document as if a terminating heading followed.
func (f *fsm) finish() error {
	if !f.state.inEntry() {
		return nil
	}
	switch f.state {
	case stateBlock:
		return f.errorf("unterminated #+BEGIN_%s block", f.open.Fence)
	case statePropertyDrawer, stateLogbookDrawer, stateIgnoredDrawer:
		return f.errorf("unterminated drawer at end of file")
	}
	f.finalize()
	return nil
}

// closeOpen moves a pending list, table or colon block into the content.
func (f *fsm) closeOpen() {
	if f.open == nil {
		return
	}
	f.entry.append(*f.open)
	f.open = nil
}

func (f *fsm) clearCaptures() {
	if f.pendingCaption != "" {
		f.logger.Warn("parser: caption not followed by an image, dropped",
			slog.String("file", f.file),
			slog.Int("line", f.lineNo),
			slog.String("caption", f.pendingCaption))
	}
	f.pendingName = ""
	f.pendingCaption = ""
	f.pendingAttrs = nil
}

func (f *fsm) errorf(format string, args ...any) error {
	return &ParseError{File: f.file, Line: f.lineNo, Reason: fmt.Sprintf(format, args...)}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
