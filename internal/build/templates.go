package build

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/starford/orgblog/internal/models"
)

// Templates maps a template name to its HTML snippet.
type Templates map[string]string

// Names returns the defined template names, sorted.
func (t Templates) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TemplateDefinitions collects the named HTML export blocks of all template
// entries. A name defined twice keeps its first definition.
func TemplateDefinitions(entries []*models.Entry, logger *slog.Logger) Templates {
	out := Templates{}
	for _, e := range entries {
		if e.Category != models.CategoryTemplates {
			continue
		}
		for _, b := range e.Content {
			if b.Kind != models.BlockFenced || b.Name == "" || !isHTML(b) {
				continue
			}
			if _, dup := out[b.Name]; dup {
				logger.Warn("build: template defined twice",
					slog.String("name", b.Name),
					slog.String("id", e.ID))
				continue
			}
			out[b.Name] = strings.Join(b.Lines, "\n")
		}
	}
	return out
}

func isHTML(b models.Block) bool {
	switch b.Fence {
	case models.FenceHTML:
		return true
	case models.FenceExport:
		return strings.EqualFold(strings.TrimSpace(b.Args), "html")
	}
	return false
}
