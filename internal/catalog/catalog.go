package catalog

import (
	"time"

	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
)

// Catalog defines the catalog operations used by the build and the read side.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Catalog interface {
	Sync(entries []*models.Entry, meta metadata.Map, bump []string, now time.Time) (*SyncResult, error)
	GetEntry(id string) (*EntryRow, error)
	RawSource(id string) (string, error)
	ListEntries(filter Filter, limit, offset int) ([]EntryRow, int, error)
	Tags() (map[string]int, error)
	Versions() (map[string]int, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
