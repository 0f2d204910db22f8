package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/entryservice"
	"github.com/starford/orgblog/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *entryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *entryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// entryID extracts the entry id from the URL.
// Supports encoded characters from OpenAPI clients.
func entryID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List published entries with optional pagination and filtering
//	@Tags			entries
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			tag			query		string	false	"Filter by user tag"
//	@Param			category	query		string	false	"Filter by category"	Enums(TEMPORAL, PERSISTENT, TAGS, TEMPLATES)
//	@Success		200			{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := catalog.Filter{
		Tag:      q.Get("tag"),
		Category: models.Category(q.Get("category")),
	}

	items, total, err := h.svc.ListEntries(r.Context(), filter, limit, offset)
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": items,
		"total":   total,
	})
}

// GetEntry handles GET /api/entries/{id}.
//
//	@Summary		Get a single entry by id
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	EntryDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := entryID(r)
	entry, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		h.fail(w, "get entry", id, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// GetSource handles GET /api/entries/{id}/source.
//
//	@Summary		Get the outline-markup source of an entry
//	@Tags			entries
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	SourceResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{id}/source [get]
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id := entryID(r)
	src, err := h.svc.Source(r.Context(), id)
	if err != nil {
		h.fail(w, "get source", id, err)
		return
	}
	writeJSON(w, http.StatusOK, SourceResponse{ID: id, Source: src})
}

// Years handles GET /api/timeline.
//
//	@Summary		List the years holding published entries
//	@Tags			timeline
//	@Produce		json
//	@Success		200	{object}	YearsResponse
//	@Security		BearerAuth
//	@Router			/timeline [get]
func (h *Handler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.Years(r.Context())
	if err != nil {
		slog.Error("list years failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"years": years,
	})
}

// Timeline handles GET /api/timeline/{year}[/{month}[/{day}]].
//
//	@Summary		List entry ids published in a year, month or day
//	@Tags			timeline
//	@Produce		json
//	@Param			year	path		int	true	"Year"
//	@Param			month	path		int	false	"Month"
//	@Param			day		path		int	false	"Day"
//	@Success		200		{object}	TimelineResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/timeline/{year} [get]
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	var q entryservice.TimelineQuery
	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &q.Year}, {"month", &q.Month}, {"day", &q.Day}} {
		raw := chi.URLParam(r, p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(p.name+" must be a number"))
			return
		}
		*p.dst = n
	}

	ids, err := h.svc.Timeline(r.Context(), q)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalid) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		h.fail(w, "timeline", strconv.Itoa(q.Year), err)
		return
	}
	writeJSON(w, http.StatusOK, TimelineResponse{Year: q.Year, Month: q.Month, Day: q.Day, IDs: ids})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across entries
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{ID: hit.ID, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Tags handles GET /api/tags.
//
//	@Summary		Count entries per user tag
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": tags,
	})
}

func (h *Handler) fail(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
