package parser

// state is the position of the parser inside the outline.
type state int

const (
	stateSearchingHeader state = iota
	stateHeaderFound
	stateEntryContent
	statePropertyDrawer
	stateLogbookDrawer
	stateIgnoredDrawer
	stateBlock
	stateList
	stateTable
	stateColonBlock
	stateSkippingExcludedSubtree
)

var stateNames = map[state]string{
	stateSearchingHeader:         "searching-header",
	stateHeaderFound:             "header-found",
	stateEntryContent:            "entry-content",
	statePropertyDrawer:          "property-drawer",
	stateLogbookDrawer:           "logbook-drawer",
	stateIgnoredDrawer:           "ignored-drawer",
	stateBlock:                   "block",
	stateList:                    "list",
	stateTable:                   "table",
	stateColonBlock:              "colon-block",
	stateSkippingExcludedSubtree: "skipping-excluded-subtree",
}

func (s state) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// inEntry reports whether an entry is being collected in this state.
func (s state) inEntry() bool {
	return s != stateSearchingHeader
}
