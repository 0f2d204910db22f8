package api

import (
	"github.com/starford/orgblog/internal/entryservice"
)

// EntryDetail is the full entry response type (aliased from the domain layer).
type EntryDetail = entryservice.EntryDetail

// EntryListItem is a lightweight item in a list response (aliased from the domain layer).
type EntryListItem = entryservice.EntryListItem

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// SourceResponse carries the outline-markup source of one entry.
type SourceResponse struct {
	ID     string `json:"id" example:"2024-03-02-hello" validate:"required"`
	Source string `json:"source" example:"* DONE Hello :blog:" validate:"required"`
}

// TimelineResponse lists the ids published in the requested period.
type TimelineResponse struct {
	Year  int      `json:"year" example:"2024" validate:"required"`
	Month int      `json:"month,omitempty" example:"3"`
	Day   int      `json:"day,omitempty" example:"2"`
	IDs   []string `json:"ids" validate:"required"`
}

// YearsResponse lists the years holding published entries.
type YearsResponse struct {
	Years []int `json:"years" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string `json:"id" example:"2024-03-02-hello" validate:"required"`
	Title   string `json:"title" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// TagsResponse maps user tags to entry counts.
type TagsResponse struct {
	Tags map[string]int `json:"tags" validate:"required"`
}
