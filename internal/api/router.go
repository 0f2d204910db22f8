package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/orgblog/internal/entryservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *entryservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Entries.
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/{id}", h.GetEntry)
	r.Get("/entries/{id}/source", h.GetSource)

	// Timeline.
	r.Get("/timeline", h.Years)
	r.Get("/timeline/{year}", h.Timeline)
	r.Get("/timeline/{year}/{month}", h.Timeline)
	r.Get("/timeline/{year}/{month}/{day}", h.Timeline)

	// Search and tags.
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
