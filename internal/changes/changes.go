// Package changes compares the metadata of two runs and decides which entries
// are rendered, announced in feeds or get a new version.
package changes

import (
	"fmt"
	"log/slog"

	"github.com/starford/orgblog/internal/metadata"
	"github.com/starford/orgblog/internal/models"
)

// Rule identifies the row of the decision table that classified an entry.
type Rule int

const (
	RuleFirstRun Rule = iota + 1
	RuleNewEntry
	RuleMissingCreated
	RuleCreatedChanged
	RuleUnchanged
	RuleSilentUpdate
	RuleUpdate
	RuleConfused
)

var ruleNames = map[Rule]string{
	RuleFirstRun:       "first-run",
	RuleNewEntry:       "new-entry",
	RuleMissingCreated: "missing-created",
	RuleCreatedChanged: "created-changed",
	RuleUnchanged:      "unchanged",
	RuleSilentUpdate:   "silent-update",
	RuleUpdate:         "update",
	RuleConfused:       "confused",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Action is the set of outputs a rule puts an entry into.
type Action struct {
	Generate         bool
	Feed             bool
	IncrementVersion bool
}

// Action returns what the rule does with an entry. Anomalies do nothing.
func (r Rule) Action() Action {
	switch r {
	case RuleFirstRun, RuleNewEntry:
		return Action{Generate: true, Feed: true}
	case RuleUnchanged, RuleSilentUpdate:
		return Action{Generate: true}
	case RuleUpdate:
		return Action{Generate: true, Feed: true, IncrementVersion: true}
	default:
		return Action{}
	}
}

// Anomalous reports whether the rule excludes the entry and warns.
func (r Rule) Anomalous() bool {
	return r == RuleMissingCreated || r == RuleCreatedChanged || r == RuleConfused
}

// Anomaly is one entry excluded from this run.
type Anomaly struct {
	ID      string
	Rule    Rule
	Message string
}

// Result lists the ids per output set, each sorted.
type Result struct {
	ToGenerate         []string
	ToFeed             []string
	ToIncrementVersion []string
	Anomalies          []Anomaly
}

// Classify applies the decision table to one entry. previous is nil on the
// first run; prev and found describe the entry's previous metadata.
func Classify(cur models.EntryMetadata, previous metadata.Map, prev models.EntryMetadata, found bool) Rule {
	switch {
	case previous == nil:
		return RuleFirstRun
	case !found:
		return RuleNewEntry
	case cur.Created.IsZero():
		return RuleMissingCreated
	case !cur.Created.Equal(prev.Created):
		return RuleCreatedChanged
	case cur.Checksum == prev.Checksum:
		// TODO: skip rendering here once the output stage keeps unchanged pages.
		return RuleUnchanged
	case cur.LatestUpdate.Equal(prev.LatestUpdate):
		return RuleSilentUpdate
	case !cur.LatestUpdate.Equal(prev.LatestUpdate):
		return RuleUpdate
	default:
		return RuleConfused
	}
}

// Detector runs the decision table over a whole snapshot.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a Detector. Anomalies are logged as warnings with
// category=anomaly.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect classifies every id of current. Entries that only exist in previous
// are ignored. It never fails: anomalies are reported and left out of the sets.
func (d *Detector) Detect(current, previous metadata.Map) Result {
	var res Result
	for _, id := range current.IDs() {
		cur := current[id]
		prev, found := previous[id]
		rule := Classify(cur, previous, prev, found)

		if rule.Anomalous() {
			a := Anomaly{ID: id, Rule: rule, Message: message(rule, cur, prev)}
			res.Anomalies = append(res.Anomalies, a)
			d.logger.Warn("changes: "+a.Message,
				slog.String("category", "anomaly"),
				slog.String("id", id),
				slog.String("rule", rule.String()))
			continue
		}

		d.logger.Debug("changes: classified entry",
			slog.String("id", id),
			slog.String("rule", rule.String()))
		act := rule.Action()
		if act.Generate {
			res.ToGenerate = append(res.ToGenerate, id)
		}
		if act.Feed {
			res.ToFeed = append(res.ToFeed, id)
		}
		if act.IncrementVersion {
			res.ToIncrementVersion = append(res.ToIncrementVersion, id)
		}
	}
	return res
}

func message(rule Rule, cur, prev models.EntryMetadata) string {
	switch rule {
	case RuleMissingCreated:
		return fmt.Sprintf("entry %q has no created timestamp; it is skipped", cur.Title)
	case RuleCreatedChanged:
		return fmt.Sprintf("created timestamp of %q changed from %s to %s; it must never change, the entry is skipped",
			cur.Title, prev.Created.Format("2006-01-02 15:04"), cur.Created.Format("2006-01-02 15:04"))
	default:
		return fmt.Sprintf("confused state for %q; the entry is skipped", cur.Title)
	}
}
