// Package snapshot persists the metadata of one run so the next run can
// compare against it.
//
// The file is a private cache: it is YAML for easy inspection, but only
// snapshots written with the same FormatVersion are accepted.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/storage"
)

// FormatVersion is bumped whenever the persisted layout changes.
const FormatVersion = 1

// ErrVersion is returned when a snapshot was written by an incompatible version.
var ErrVersion = errors.New("snapshot: unsupported format version")

// Snapshot is the persisted state of one run.
type Snapshot struct {
	FormatVersion int               `yaml:"format_version"`
	Metadata      metadata.Map      `yaml:"metadata"`
	Timeline      metadata.Timeline `yaml:"timeline"`
}

// New wraps generated metadata into a snapshot of the current format.
func New(meta metadata.Map, timeline metadata.Timeline) *Snapshot {
	return &Snapshot{FormatVersion: FormatVersion, Metadata: meta, Timeline: timeline}
}

// Load reads the snapshot at path.
// If the file does not exist, it returns (nil, nil): there is no previous run.
func Load(store storage.Provider, path string) (*Snapshot, error) {
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: load: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	if s.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %s has %d, want %d", ErrVersion, path, s.FormatVersion, FormatVersion)
	}
	if s.Metadata == nil {
		s.Metadata = metadata.Map{}
	}
	if s.Timeline == nil {
		s.Timeline = metadata.Timeline{}
	}
	return &s, nil
}

// Save writes the snapshot atomically to path.
func Save(store storage.Provider, path string, s *Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := store.Write(path, data); err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	return nil
}
