package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quietwren/gemjournal/internal/journalservice"
	"github.com/quietwren/gemjournal/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *journalservice.Service, broker *sse.Broker, authEnabled bool, token, exportDir string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, broker, exportDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Journal collection.
	r.Get("/journals", h.ListJournals)
	r.Get("/entries", h.GetEntries)

	// Publish pipeline.
	r.Post("/publish/toggle", h.TogglePublish)
	r.Post("/export", h.Export)

	// Search and collection metadata.
	r.Get("/search", h.Search)
	r.Get("/index", h.Index)
	r.Get("/manifest", h.Manifest)
	r.Post("/reindex", h.Reindex)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
