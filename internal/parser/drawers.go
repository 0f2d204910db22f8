package parser

import (
	"regexp"
	"strings"

	"github.com/starford/orgblog/internal/timestamp"
)

var (
	drawerStartRe = regexp.MustCompile(`^\s*:([A-Za-z][\w-]*):\s*$`)
	drawerEndRe   = regexp.MustCompile(`(?i)^\s*:END:\s*$`)
	propertyRe    = regexp.MustCompile(`^\s*:([^:\s]+):\s*(.*?)\s*$`)
)

// openDrawer checks whether the line opens a drawer and switches state.
func (f *fsm) openDrawer(line string) (bool, error) {
	if drawerEndRe.MatchString(line) {
		return true, f.errorf(":END: without open drawer")
	}
	m := drawerStartRe.FindStringSubmatch(line)
	if m == nil {
		return false, nil
	}
	f.closeOpen()
	f.resume = stateEntryContent
	switch strings.ToUpper(m[1]) {
	case "PROPERTIES":
		f.state = statePropertyDrawer
	case "LOGBOOK":
		f.state = stateLogbookDrawer
	default:
		f.state = stateIgnoredDrawer
		f.omit = true
	}
	return true, nil
}

func (f *fsm) propertyDrawer(line string) error {
	if drawerEndRe.MatchString(line) {
		f.state = f.resume
		return nil
	}
	if _, ok := f.matchHeading(line); ok {
		return f.errorf("heading inside property drawer")
	}
	if f.entry.propertiesDone {
		return nil
	}
	m := propertyRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	key, value := m[1], m[2]
	switch {
	case strings.EqualFold(key, f.cfg.IDProperty) && f.entry.id == "":
		if fields := strings.Fields(value); len(fields) > 0 {
			f.entry.id = fields[0]
		}
	case strings.EqualFold(key, f.cfg.CreatedProperty) && f.entry.created.IsZero():
		t, err := timestamp.Parse(value)
		if err != nil {
			return f.errorf("malformed %s timestamp %q: %v", f.cfg.CreatedProperty, value, err)
		}
		f.entry.created = t
	}
	if f.entry.id != "" && !f.entry.created.IsZero() {
		f.entry.propertiesDone = true
	}
	return nil
}

func (f *fsm) logbookDrawer(line string) error {
	if drawerEndRe.MatchString(line) {
		f.state = f.resume
		return nil
	}
	if _, ok := f.matchHeading(line); ok {
		return f.errorf("heading inside logbook drawer")
	}
	m := f.grammar.finished.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	t, err := timestamp.Parse(m[1])
	if err != nil {
		return f.errorf("malformed logbook timestamp %q: %v", m[1], err)
	}
	f.entry.addFinished(t)
	return nil
}

func (f *fsm) ignoredDrawer(line string) error {
	f.omit = true
	if drawerEndRe.MatchString(line) {
		f.state = f.resume
		return nil
	}
	if _, ok := f.matchHeading(line); ok {
		return f.errorf("heading inside drawer")
	}
	return nil
}
