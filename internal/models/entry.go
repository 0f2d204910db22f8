// Package models defines the domain types shared by the parser, the metadata
// generator and the change-detection engine.
package models

import "time"

// Category classifies an entry. It is derived once from the internal tags.
type Category string

const (
	CategoryTemporal   Category = "TEMPORAL"
	CategoryPersistent Category = "PERSISTENT"
	CategoryTags       Category = "TAGS"
	CategoryTemplates  Category = "TEMPLATES"
)

// InternalTag is one of the fixed markers that steer how an entry is published.
type InternalTag string

const (
	TagBlog       InternalTag = "blog"
	TagTagEntry   InternalTag = "tag-entry"
	TagPersistent InternalTag = "persistent"
	TagTemplate   InternalTag = "template"
	TagHidden     InternalTag = "hidden"
)

// Entry is one qualifying heading subtree: an article, a tag page, a
// persistent page or a set of template definitions.
type Entry struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Level    int      `yaml:"level" json:"level"`
	Category Category `yaml:"category" json:"category"`

	CreatedAt        time.Time   `yaml:"created" json:"created"`
	FirstPublishedAt time.Time   `yaml:"first_published" json:"first_published"`
	LatestUpdateAt   time.Time   `yaml:"latest_update" json:"latest_update"`
	FinishedHistory  []time.Time `yaml:"finished_history" json:"finished_history"`

	UserTags     []string      `yaml:"user_tags,omitempty" json:"user_tags,omitempty"`
	InternalTags []InternalTag `yaml:"internal_tags,omitempty" json:"internal_tags,omitempty"`

	// Links holds the #+LINK: abbreviations defined inside the entry.
	Links map[string]string `yaml:"links,omitempty" json:"links,omitempty"`

	Content   []Block `yaml:"content" json:"content"`
	RawSource string  `yaml:"-" json:"-"`

	// SourceFile is the input file the entry was parsed from.
	SourceFile string `yaml:"-" json:"source_file,omitempty"`
}

// HasInternalTag reports whether the entry carries the given marker.
func (e *Entry) HasInternalTag(tag InternalTag) bool {
	for _, t := range e.InternalTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Hidden reports whether the entry is kept out of the publish timeline.
func (e *Entry) Hidden() bool {
	return e.HasInternalTag(TagHidden)
}

// CategoryFromTags derives the category from the internal tags.
// Templates win over tag pages, tag pages over persistent pages.
func CategoryFromTags(tags []InternalTag) Category {
	has := func(want InternalTag) bool {
		for _, t := range tags {
			if t == want {
				return true
			}
		}
		return false
	}
	switch {
	case has(TagTemplate):
		return CategoryTemplates
	case has(TagTagEntry):
		return CategoryTags
	case has(TagPersistent):
		return CategoryPersistent
	default:
		return CategoryTemporal
	}
}
