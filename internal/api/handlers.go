package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quietwren/gemjournal/internal/apperr"
	"github.com/quietwren/gemjournal/internal/journalservice"
	"github.com/quietwren/gemjournal/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc       *journalservice.Service
	broker    *sse.Broker
	exportDir string
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *journalservice.Service, broker *sse.Broker, exportDir string) *Handler {
	return &Handler{svc: svc, broker: broker, exportDir: exportDir}
}

// writeError maps the apperr taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error, logMsg string, attrs ...slog.Attr) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrUntrustedPath):
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidFormat), errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.LogAttrs(context.Background(), slog.LevelError, logMsg,
			append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListJournals handles GET /api/journals.
func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListFiles(r.Context())
	if err != nil {
		writeError(w, err, "list journals failed")
		return
	}
	items := make([]JournalFileItem, len(rows))
	for i, row := range rows {
		items[i] = JournalFileItem{
			Path:           row.Path,
			Filename:       row.Filename,
			Checksum:       row.Checksum,
			EntryCount:     row.EntryCount,
			FirstTimestamp: row.FirstTimestamp,
			LastTimestamp:  row.LastTimestamp,
			Labels:         nonNil(row.Labels),
			EntryTypes:     nonNil(row.EntryTypes),
			Tags:           nonNil(row.Tags),
			UpdatedAt:      row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, JournalFileListResponse{Journals: items, Total: len(items)})
}

// GetEntries handles GET /api/entries?path=.
func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	entries, err := h.svc.GetEntries(r.Context(), path)
	if err != nil {
		writeError(w, err, "get entries failed", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, EntriesResponse{Path: path, Entries: entries})
}

// TogglePublish handles POST /api/publish/toggle.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and id are required"))
		return
	}
	updated, err := h.svc.TogglePublish(r.Context(), req.Path, req.ID)
	if err != nil {
		writeError(w, err, "toggle publish failed", slog.String("path", req.Path))
		return
	}
	if !updated {
		writeJSON(w, http.StatusNotFound, errorBody("entry not found"))
		return
	}
	if h.broker != nil {
		h.broker.PublishJournalEvent("published", req.Path)
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Updated: true})
}

// Export handles POST /api/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = h.exportDir
	}
	exported, err := h.svc.Export(r.Context(), req.Path, outDir)
	if err != nil {
		writeError(w, err, "export failed", slog.String("path", req.Path))
		return
	}
	if h.broker != nil {
		h.broker.PublishJournalEvent("exported", req.Path)
	}
	writeJSON(w, http.StatusOK, ExportResponse{Exported: nonNil(exported)})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, err, "search failed", slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Index handles GET /api/index.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.IndexEntries(r.Context())
	if err != nil {
		writeError(w, err, "index failed")
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{Entries: entries})
}

// Manifest handles GET /api/manifest.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.svc.Manifest(r.Context())
	if err != nil {
		writeError(w, err, "manifest failed")
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// Reindex handles POST /api/reindex.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reindex(r.Context()); err != nil {
		writeError(w, err, "reindex failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
