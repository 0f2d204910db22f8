package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Config names the magic tags, keywords and properties of the outline grammar.
type Config struct {
	// BlogTag marks a heading as a blog entry candidate.
	BlogTag string
	// FinishedKeyword is the completion state an entry must carry.
	FinishedKeyword string
	// Keywords lists every state keyword that may precede a heading title.
	Keywords []string

	TagsTag       string
	PersistentTag string
	TemplatesTag  string
	HiddenTag     string
	// ExcludeTag removes a heading and its whole subtree from export.
	ExcludeTag string

	IDProperty      string
	CreatedProperty string

	// ImageLinkPrefix is the link type of custom image links, e.g. [[tsfile:x.png]].
	ImageLinkPrefix string

	// StrictLinkChecking makes a repeated identical #+LINK: definition fatal.
	StrictLinkChecking bool
}

// DefaultConfig returns the grammar used by default.
func DefaultConfig() Config {
	return Config{
		BlogTag:         "blog",
		FinishedKeyword: "DONE",
		Keywords:        []string{"TODO", "NEXT", "STARTED", "WAITING", "DONE", "CANCELLED"},
		TagsTag:         "lb_tags",
		PersistentTag:   "lb_persistent",
		TemplatesTag:    "lb_templates",
		HiddenTag:       "hidden",
		ExcludeTag:      "noexport",
		IDProperty:      "ID",
		CreatedProperty: "CREATED",
		ImageLinkPrefix: "tsfile",
	}
}

// grammar holds the expressions that depend on the configuration.
type grammar struct {
	heading  *regexp.Regexp
	finished *regexp.Regexp
	image    *regexp.Regexp
}

func compile(cfg Config) (*grammar, error) {
	if cfg.FinishedKeyword == "" || cfg.BlogTag == "" {
		return nil, fmt.Errorf("parser: finished keyword and blog tag are required")
	}
	if cfg.IDProperty == "" || cfg.CreatedProperty == "" {
		return nil, fmt.Errorf("parser: id and created property names are required")
	}

	keywords := []string{regexp.QuoteMeta(cfg.FinishedKeyword)}
	for _, kw := range cfg.Keywords {
		if kw != "" && kw != cfg.FinishedKeyword {
			keywords = append(keywords, regexp.QuoteMeta(kw))
		}
	}

	prefix := cfg.ImageLinkPrefix
	if prefix == "" {
		prefix = "file"
	}

	heading, err := regexp.Compile(`^(\*+)\s+(?:(` + strings.Join(keywords, "|") + `)\s+)?(.*?)(?:\s+(:\S+:))?\s*$`)
	if err != nil {
		return nil, fmt.Errorf("parser: compile heading pattern: %w", err)
	}
	finished, err := regexp.Compile(`^\s*-\s+State\s+"` + regexp.QuoteMeta(cfg.FinishedKeyword) +
		`"\s+from(?:\s+"[^"]*")?\s+([\[<][^\]>]*[\]>])\s*(?:\\\\)?\s*$`)
	if err != nil {
		return nil, fmt.Errorf("parser: compile logbook pattern: %w", err)
	}
	image, err := regexp.Compile(`^\s*\[\[` + regexp.QuoteMeta(prefix) +
		`:([^\]]+?\.(?i:png|jpg|jpeg|svg|gif))\](?:\[([^\]]*)\])?\]\s*$`)
	if err != nil {
		return nil, fmt.Errorf("parser: compile image pattern: %w", err)
	}
	return &grammar{heading: heading, finished: finished, image: image}, nil
}
