package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/orgblog/internal/models"
)

var (
	titleDirectiveRe = regexp.MustCompile(`(?i)^#\+TITLE:\s*(.*?)\s*$`)
	priorityRe       = regexp.MustCompile(`^\[#[A-Za-z0-9]\]\s*`)
)

// heading is a recognized heading line.
type heading struct {
	level        int
	keyword      string
	title        string
	userTags     []string
	internalTags []models.InternalTag
	excluded     bool
}

// tagClassifier sorts the tags of a heading into internal markers and user tags.
type tagClassifier struct {
	fold     cases.Caser
	internal map[string]models.InternalTag
	exclude  string
}

func newTagClassifier(cfg Config) *tagClassifier {
	fold := cases.Fold()
	c := &tagClassifier{
		fold:     fold,
		internal: map[string]models.InternalTag{},
		exclude:  fold.String(cfg.ExcludeTag),
	}
	for name, tag := range map[string]models.InternalTag{
		cfg.BlogTag:       models.TagBlog,
		cfg.TagsTag:       models.TagTagEntry,
		cfg.PersistentTag: models.TagPersistent,
		cfg.TemplatesTag:  models.TagTemplate,
		cfg.HiddenTag:     models.TagHidden,
	} {
		if name != "" {
			c.internal[fold.String(name)] = tag
		}
	}
	return c
}

func (c *tagClassifier) classify(h *heading, group string) {
	seenUser := map[string]bool{}
	seenInternal := map[models.InternalTag]bool{}
	for _, tag := range strings.Split(group, ":") {
		if tag == "" {
			continue
		}
		folded := c.fold.String(tag)
		if c.exclude != "" && folded == c.exclude {
			h.excluded = true
			continue
		}
		if it, ok := c.internal[folded]; ok {
			if !seenInternal[it] {
				seenInternal[it] = true
				h.internalTags = append(h.internalTags, it)
			}
			continue
		}
		if !seenUser[tag] {
			seenUser[tag] = true
			h.userTags = append(h.userTags, tag)
		}
	}
}

// matchHeading recognizes star headings and the title directive, which
// counts as a level 0 heading without keyword or tags.
func (f *fsm) matchHeading(line string) (heading, bool) {
	if m := f.grammar.heading.FindStringSubmatch(line); m != nil {
		h := heading{
			level:   len(m[1]),
			keyword: m[2],
			title:   strings.TrimSpace(priorityRe.ReplaceAllString(m[3], "")),
		}
		if m[4] != "" {
			f.tags.classify(&h, m[4])
		}
		return h, true
	}
	if m := titleDirectiveRe.FindStringSubmatch(line); m != nil {
		return heading{level: 0, title: m[1]}, true
	}
	return heading{}, false
}

// qualifies reports whether the heading starts a blog entry.
func (h heading) qualifies(finishedKeyword string) bool {
	if h.excluded || h.keyword != finishedKeyword {
		return false
	}
	for _, t := range h.internalTags {
		if t == models.TagBlog {
			return true
		}
	}
	return false
}
