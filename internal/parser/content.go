package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/orgblog/internal/models"
)

var (
	beginBlockRe = regexp.MustCompile(`(?i)^\s*#\+BEGIN_(\S+)(?:\s+(.*?))?\s*$`)
	endBlockRe   = regexp.MustCompile(`(?i)^\s*#\+END_(\S+)\s*$`)
	nameRe       = regexp.MustCompile(`(?i)^\s*#\+NAME:\s*(.*?)\s*$`)
	captionRe    = regexp.MustCompile(`(?i)^\s*#\+CAPTION:\s*(.*?)\s*$`)
	attrHTMLRe   = regexp.MustCompile(`(?i)^\s*#\+ATTR_HTML:\s*(.*?)\s*$`)
	linkDefRe    = regexp.MustCompile(`(?i)^\s*#\+LINK:\s*(\S+)\s+(\S+)\s*$`)
	tblfmRe      = regexp.MustCompile(`(?i)^\s*#\+TBLFM:`)
	directiveRe  = regexp.MustCompile(`^\s*#(\+|\s|$)`)
	ruleRe       = regexp.MustCompile(`^\s*-{5,}\s*$`)
	tableRe      = regexp.MustCompile(`^\s*\|`)
	colonStartRe = regexp.MustCompile(`^\s*: `)
	colonLineRe  = regexp.MustCompile(`^\s*:`)
	listItemRe   = regexp.MustCompile(`^(\s*)([-+]|\d+[.)]|\s\*)(\s+)(\[[ Xx-]\]\s+)?(.*)$`)
	urlRe        = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
)

var fences = map[string]models.FenceKind{
	"src":     models.FenceSource,
	"example": models.FenceExample,
	"verse":   models.FenceVerse,
	"quote":   models.FenceQuote,
	"center":  models.FenceCenter,
	"html":    models.FenceHTML,
	"ascii":   models.FenceASCII,
	"latex":   models.FenceLatex,
	"export":  models.FenceExport,
}

// contentRule handles one line shape inside the entry body.
// Rules are tried in order; the first whose pattern matches wins.
type contentRule struct {
	name   string
	match  func(f *fsm, line string) bool
	handle func(f *fsm, line string) error
}

var contentRules = []contentRule{
	{"blank", func(_ *fsm, l string) bool { return isBlank(l) }, (*fsm).onBlank},
	{"block", matchRe(beginBlockRe), (*fsm).onBeginBlock},
	{"name", matchRe(nameRe), (*fsm).onName},
	{"caption", matchRe(captionRe), (*fsm).onCaption},
	{"attr_html", matchRe(attrHTMLRe), (*fsm).onAttrHTML},
	{"link", matchRe(linkDefRe), (*fsm).onLinkDefinition},
	{"directive", matchRe(directiveRe), func(*fsm, string) error { return nil }},
	{"rule", matchRe(ruleRe), (*fsm).onRule},
	{"image", func(f *fsm, l string) bool { return f.grammar.image.MatchString(l) }, (*fsm).onImage},
	{"table", matchRe(tableRe), (*fsm).onTable},
	{"colon", matchRe(colonStartRe), (*fsm).onColon},
	{"list", matchRe(listItemRe), (*fsm).onListItem},
	{"paragraph", func(*fsm, string) bool { return true }, (*fsm).onParagraph},
}

func matchRe(re *regexp.Regexp) func(*fsm, string) bool {
	return func(_ *fsm, line string) bool { return re.MatchString(line) }
}

func (f *fsm) entryContent(line string) error {
	if h, ok := f.matchHeading(line); ok {
		return f.onHeading(h, line)
	}
	if ok, err := f.openDrawer(line); ok || err != nil {
		return err
	}
	if f.state == stateHeaderFound && !isBlank(line) {
		f.state = stateEntryContent
	}
	for _, r := range contentRules {
		if r.match(f, line) {
			return r.handle(f, line)
		}
	}
	return f.errorf("no rule for line %q", line)
}

func (f *fsm) onBlank(string) error {
	f.clearCaptures()
	return nil
}

func (f *fsm) onBeginBlock(line string) error {
	m := beginBlockRe.FindStringSubmatch(line)
	kind, ok := fences[strings.ToLower(m[1])]
	if !ok {
		return f.errorf("unknown block type %q", m[1])
	}
	args := m[2]
	if kind == models.FenceExport {
		backend := strings.ToLower(firstField(args))
		if backend != "html" && backend != "latex" {
			return f.errorf("export block backend must be html or latex, got %q", backend)
		}
	}
	f.open = &models.Block{
		Kind:  models.BlockFenced,
		Fence: kind,
		Args:  args,
		Name:  f.pendingName,
		Lines: []string{},
	}
	f.pendingName = ""
	f.state = stateBlock
	return nil
}

func (f *fsm) inBlock(line string) error {
	if m := endBlockRe.FindStringSubmatch(line); m != nil && strings.EqualFold(m[1], string(f.open.Fence)) {
		f.closeOpen()
		f.state = stateEntryContent
		return nil
	}
	f.open.Lines = append(f.open.Lines, line)
	return nil
}

func (f *fsm) onName(line string) error {
	f.pendingName = nameRe.FindStringSubmatch(line)[1]
	return nil
}

func (f *fsm) onCaption(line string) error {
	f.pendingCaption = captionRe.FindStringSubmatch(line)[1]
	return nil
}

// onAttrHTML collects ":key value" pairs. Several lines accumulate.
func (f *fsm) onAttrHTML(line string) error {
	if f.pendingAttrs == nil {
		f.pendingAttrs = map[string]string{}
	}
	var key string
	for _, field := range strings.Fields(attrHTMLRe.FindStringSubmatch(line)[1]) {
		if strings.HasPrefix(field, ":") && len(field) > 1 {
			key = field[1:]
			f.pendingAttrs[key] = ""
			continue
		}
		if key == "" {
			return f.errorf("#+ATTR_HTML: value %q without key", field)
		}
		if v := f.pendingAttrs[key]; v != "" {
			f.pendingAttrs[key] = v + " " + field
		} else {
			f.pendingAttrs[key] = field
		}
	}
	return nil
}

func (f *fsm) onLinkDefinition(line string) error {
	m := linkDefRe.FindStringSubmatch(line)
	tag, url := m[1], m[2]
	prev, exists := f.entry.links[tag]
	switch {
	case !exists:
		f.entry.links[tag] = url
	case prev != url:
		return f.errorf("link %q redefined from %q to %q", tag, prev, url)
	case f.cfg.StrictLinkChecking:
		return f.errorf("link %q defined twice", tag)
	default:
		f.logger.Debug("parser: duplicate link definition",
			slog.String("file", f.file),
			slog.Int("line", f.lineNo),
			slog.String("link", tag))
	}
	return nil
}

func (f *fsm) onRule(string) error {
	f.entry.append(models.Rule())
	return nil
}

func (f *fsm) onImage(line string) error {
	m := f.grammar.image.FindStringSubmatch(line)
	img := &models.ImageLink{
		Filename:    m[1],
		Description: m[2],
		Caption:     f.pendingCaption,
		Attributes:  f.pendingAttrs,
	}
	if width, ok := img.Attributes["linkwidth"]; ok && width != "none" && urlRe.MatchString(img.Description) {
		return f.errorf("image %q has a URL description and linkwidth %q", img.Filename, width)
	}
	f.entry.append(models.Block{Kind: models.BlockImage, Image: img})
	f.pendingCaption = ""
	f.clearCaptures()
	return nil
}

func (f *fsm) onTable(line string) error {
	f.open = &models.Block{Kind: models.BlockTable, Lines: []string{line}}
	f.state = stateTable
	return nil
}

func (f *fsm) inTable(line string) error {
	switch {
	case isBlank(line):
		f.closeOpen()
		f.state = stateEntryContent
		f.clearCaptures()
	case tableRe.MatchString(line):
		f.open.Lines = append(f.open.Lines, line)
	case tblfmRe.MatchString(line):
	default:
		return f.errorf("unexpected line in table, a table ends on a blank line: %q", line)
	}
	return nil
}

func (f *fsm) onColon(line string) error {
	f.open = &models.Block{Kind: models.BlockColon, Lines: []string{line}}
	f.state = stateColonBlock
	return nil
}

func (f *fsm) inColonBlock(line string) error {
	switch {
	case isBlank(line):
		f.closeOpen()
		f.state = stateEntryContent
		f.clearCaptures()
	case colonLineRe.MatchString(line):
		f.open.Lines = append(f.open.Lines, line)
	default:
		return f.errorf("unexpected line in colon block, it ends on a blank line: %q", line)
	}
	return nil
}

func (f *fsm) onListItem(line string) error {
	f.open = &models.Block{Kind: models.BlockList, Lines: []string{line}}
	f.listWidth = itemWidth(line)
	f.state = stateList
	return nil
}

// inList keeps collecting items and their continuation lines. A continuation
// must be indented exactly to the text column of the item above it.
func (f *fsm) inList(line string) error {
	if isBlank(line) {
		f.closeOpen()
		f.state = stateEntryContent
		f.clearCaptures()
		return nil
	}
	if _, ok := f.matchHeading(line); ok {
		return f.errorf("heading inside list, a list ends on a blank line: %q", line)
	}
	if listItemRe.MatchString(line) {
		f.open.Lines = append(f.open.Lines, line)
		f.listWidth = itemWidth(line)
		return nil
	}
	if indent := len(line) - len(strings.TrimLeft(line, " \t")); indent != f.listWidth {
		return f.errorf("list continuation indented %d, expected %d", indent, f.listWidth)
	}
	f.open.Lines = append(f.open.Lines, line)
	return nil
}

func itemWidth(line string) int {
	m := listItemRe.FindStringSubmatch(line)
	return len(m[1]) + len(m[2]) + len(m[3])
}

func (f *fsm) onParagraph(line string) error {
	text := strings.TrimSpace(line)
	f.text = true
	f.clearCaptures()
	if last := f.entry.last(); last != nil && last.Kind == models.BlockParagraph && f.prevText {
		last.Text += " " + text
		return nil
	}
	f.entry.append(models.Paragraph(text))
	return nil
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
