package parser

import (
	"strings"
	"time"

	"github.com/starford/orgblog/internal/models"
)

// entryBuilder collects the pieces of one entry while its subtree is walked.
// It only turns into a models.Entry once the subtree has ended.
type entryBuilder struct {
	id    string
	title string
	level int

	created        time.Time
	history        []time.Time
	firstPublished time.Time
	latestUpdate   time.Time

	userTags     []string
	internalTags []models.InternalTag

	// propertiesDone is set once both id and created are known.
	propertiesDone bool

	links   map[string]string
	content []models.Block
	raw     []string
}

func newEntryBuilder(h heading) *entryBuilder {
	return &entryBuilder{
		title:        h.title,
		level:        h.level,
		userTags:     h.userTags,
		internalTags: h.internalTags,
		links:        map[string]string{},
	}
}

// addFinished records one finished transition and keeps the publish range current.
func (b *entryBuilder) addFinished(t time.Time) {
	b.history = append(b.history, t)
	if b.firstPublished.IsZero() || t.Before(b.firstPublished) {
		b.firstPublished = t
	}
	if b.latestUpdate.IsZero() || t.After(b.latestUpdate) {
		b.latestUpdate = t
	}
}

func (b *entryBuilder) append(block models.Block) {
	b.content = append(b.content, block)
}

// last returns the most recent content block, or nil.
func (b *entryBuilder) last() *models.Block {
	if len(b.content) == 0 {
		return nil
	}
	return &b.content[len(b.content)-1]
}

// build converts the builder into an entry. When mandatory fields are
// missing it returns nil and their names instead.
func (b *entryBuilder) build(sourceFile string) (*models.Entry, []string) {
	var missing []string
	if b.id == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(b.title) == "" {
		missing = append(missing, "title")
	}
	if b.created.IsZero() {
		missing = append(missing, "created")
	}
	if len(b.history) == 0 {
		missing = append(missing, "finished timestamp")
	}
	if len(missing) > 0 {
		return nil, missing
	}

	var links map[string]string
	if len(b.links) > 0 {
		links = b.links
	}

	return &models.Entry{
		ID:               b.id,
		Title:            b.title,
		Level:            b.level,
		Category:         models.CategoryFromTags(b.internalTags),
		CreatedAt:        b.created,
		FirstPublishedAt: b.firstPublished,
		LatestUpdateAt:   b.latestUpdate,
		FinishedHistory:  b.history,
		UserTags:         b.userTags,
		InternalTags:     b.internalTags,
		Links:            links,
		Content:          b.content,
		RawSource:        strings.Join(b.raw, "\n"),
		SourceFile:       sourceFile,
	}, nil
}
