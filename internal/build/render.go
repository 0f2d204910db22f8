package build

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/orgblog/internal/checksum"
	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
	"github.com/starford/orgblog/internal/storage"
)

// RenderInput is everything the output stage gets from one run.
type RenderInput struct {
	Templates          Templates
	Entries            []*models.Entry
	Metadata           metadata.Map
	Timeline           metadata.Timeline
	ToGenerate         []string
	ToFeed             []string
	ToIncrementVersion []string
	// Versions is nil when no catalog is kept.
	Versions map[string]int
}

// RenderStats counts the output of one render.
type RenderStats struct {
	Generated int `json:"generated"`
	Feed      int `json:"feed"`
	Removed   int `json:"removed"`
}

// Renderer turns a build outcome into output files.
type Renderer interface {
	Render(ctx context.Context, in RenderInput) (RenderStats, error)
}

// ManifestRenderer writes the source of every generated entry and a YAML
// manifest describing the whole blog below one output directory. HTML
// rendering consumes the manifest.
type ManifestRenderer struct {
	store storage.Provider
	dir   string
}

// NewManifestRenderer creates a renderer writing below dir.
func NewManifestRenderer(store storage.Provider, dir string) *ManifestRenderer {
	return &ManifestRenderer{store: store, dir: dir}
}

// Manifest is the document written to manifest.yaml.
type Manifest struct {
	Generated time.Time         `yaml:"generated"`
	Templates []string          `yaml:"templates,omitempty"`
	Entries   []ManifestEntry   `yaml:"entries"`
	Timeline  metadata.Timeline `yaml:"timeline"`
}

// ManifestEntry describes one entry of the manifest.
type ManifestEntry struct {
	ID             string          `yaml:"id"`
	Title          string          `yaml:"title"`
	Category       models.Category `yaml:"category"`
	Source         string          `yaml:"source"`
	Tags           []string        `yaml:"tags,omitempty"`
	Hidden         bool            `yaml:"hidden,omitempty"`
	Version        int             `yaml:"version,omitempty"`
	Feed           bool            `yaml:"feed,omitempty"`
	Updated        bool            `yaml:"updated,omitempty"`
	FirstPublished time.Time       `yaml:"first_published"`
	LatestUpdate   time.Time       `yaml:"latest_update"`
}

const entriesDir = "entries"

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

// Render implements Renderer.
func (r *ManifestRenderer) Render(ctx context.Context, in RenderInput) (RenderStats, error) {
	var stats RenderStats
	byID := make(map[string]*models.Entry, len(in.Entries))
	for _, e := range in.Entries {
		byID[e.ID] = e
	}
	feed := toSet(in.ToFeed)
	updated := toSet(in.ToIncrementVersion)

	m := Manifest{Generated: time.Now().UTC(), Templates: in.Templates.Names(), Timeline: in.Timeline}
	for _, id := range in.ToGenerate {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		e := byID[id]
		if e == nil {
			continue
		}
		src := r.sourcePath(id)
		if err := r.store.Write(src, []byte(e.RawSource+"\n")); err != nil {
			return stats, fmt.Errorf("write %s: %w", id, err)
		}
		stats.Generated++
		if feed[id] {
			stats.Feed++
		}
		m.Entries = append(m.Entries, ManifestEntry{
			ID:             id,
			Title:          e.Title,
			Category:       e.Category,
			Source:         src,
			Tags:           e.UserTags,
			Hidden:         e.Hidden(),
			Version:        in.Versions[id],
			Feed:           feed[id],
			Updated:        updated[id],
			FirstPublished: e.FirstPublishedAt,
			LatestUpdate:   e.LatestUpdateAt,
		})
	}

	removed, err := r.removeStale(byID)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	data, err := yaml.Marshal(m)
	if err != nil {
		return stats, fmt.Errorf("encode manifest: %w", err)
	}
	if err := r.store.Write(path.Join(r.dir, "manifest.yaml"), data); err != nil {
		return stats, fmt.Errorf("write manifest: %w", err)
	}
	return stats, nil
}

// removeStale deletes the sources of entries that no longer exist.
func (r *ManifestRenderer) removeStale(current map[string]*models.Entry) (int, error) {
	keep := make(map[string]bool, len(current))
	for id := range current {
		keep[r.sourcePath(id)] = true
	}
	files, err := r.store.List(path.Join(r.dir, entriesDir), ".org")
	if err != nil {
		return 0, fmt.Errorf("list outputs: %w", err)
	}
	n := 0
	for _, f := range files {
		if keep[f.Path] {
			continue
		}
		if err := r.store.Delete(f.Path); err != nil {
			return n, fmt.Errorf("remove %s: %w", f.Path, err)
		}
		n++
	}
	return n, nil
}

// sourcePath maps an id to its output file. Ids that had to be escaped get a
// digest suffix so "a/b" and "a_b" never share a file.
func (r *ManifestRenderer) sourcePath(id string) string {
	name := fileNameReplacer.Replace(id)
	if name != id {
		name += "-" + checksum.Sum([]byte(id))[:8]
	}
	return path.Join(r.dir, entriesDir, name+".org")
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
