// HTTP handlers for journal entry CRUD, search, bulk delete, and stats.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mhsenkow/myfacesnapjournal/internal/domain/journal"
)

const (
	errEntryIDRequired = "id is required"
	errEntryNotFound   = "entry not found"
)

// EntryHandler handles HTTP requests for journal entry operations.
type EntryHandler struct {
	entryService *journal.EntryService
}

// NewEntryHandler creates a new EntryHandler instance.
func NewEntryHandler(entryService *journal.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Tags      []string        `json:"tags,omitempty"`
	Mood      string          `json:"mood,omitempty"`
	Privacy   string          `json:"privacy,omitempty"`
	Source    string          `json:"source,omitempty"`
	SourceID  string          `json:"source_id,omitempty"`
	SourceURL string          `json:"source_url,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// UpdateEntryRequest is the request body for updating an entry.
// Update is full-replace over the editable fields, matching the desktop app.
type UpdateEntryRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Mood    string   `json:"mood,omitempty"`
	Privacy string   `json:"privacy,omitempty"`
}

// BulkDeleteRequest is the request body for deleting several entries at once.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// EntryResponse is the response body for entry operations.
type EntryResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Tags      []string        `json:"tags"`
	Mood      *string         `json:"mood,omitempty"`
	Privacy   string          `json:"privacy"`
	Source    string          `json:"source"`
	SourceID  *string         `json:"source_id,omitempty"`
	SourceURL *string         `json:"source_url,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ListEntriesResponse is the response body for listing or searching entries.
type ListEntriesResponse struct {
	Data []EntryResponse `json:"data"`
	Meta Meta            `json:"meta"`
}

// CreateEntry handles POST /api/v1/entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	if req.Title == "" && req.Content == "" {
		writeError(w, http.StatusBadRequest, "title or content is required")
		return
	}

	entry, svcErr := h.entryService.Create(r.Context(), journal.CreateEntryInput{
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Mood:      req.Mood,
		Privacy:   req.Privacy,
		Source:    req.Source,
		SourceID:  req.SourceID,
		SourceURL: req.SourceURL,
		Metadata:  req.Metadata,
	})
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create entry: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusCreated, entryToResponse(entry))
}

// GetEntry handles GET /api/v1/entries/{id}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, paramID)
	if entryID == "" {
		writeError(w, http.StatusBadRequest, errEntryIDRequired)
		return
	}

	entry, svcErr := h.entryService.Get(r.Context(), entryID)
	if errors.Is(svcErr, journal.ErrNotFound) {
		writeError(w, http.StatusNotFound, errEntryNotFound)
		return
	}
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get entry: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, entryToResponse(entry))
}

// ListEntries handles GET /api/v1/entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	page := parsePaginationParams(r)

	entries, svcErr := h.entryService.List(r.Context(), journal.ListEntriesInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list entries: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, entriesToListResponse(entries, page))
}

// SearchEntries handles GET /api/v1/entries/search?q=...
func (h *EntryHandler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	entries, svcErr := h.entryService.Search(r.Context(), query)
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to search entries: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, entriesToListResponse(entries, paginationParams{
		Limit:  len(entries),
		Offset: 0,
	}))
}

// GetStats handles GET /api/v1/entries/stats
func (h *EntryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, svcErr := h.entryService.GetStats(r.Context())
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get stats: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// UpdateEntry handles PUT /api/v1/entries/{id}
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, paramID)
	if entryID == "" {
		writeError(w, http.StatusBadRequest, errEntryIDRequired)
		return
	}

	var req UpdateEntryRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Privacy == "" {
		req.Privacy = "private"
	}

	updated, svcErr := h.entryService.Update(r.Context(), entryID, journal.UpdateEntryInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Mood:    req.Mood,
		Privacy: req.Privacy,
	})
	if errors.Is(svcErr, journal.ErrNotFound) {
		writeError(w, http.StatusNotFound, errEntryNotFound)
		return
	}
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update entry: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, entryToResponse(updated))
}

// DeleteEntry handles DELETE /api/v1/entries/{id}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, paramID)
	if entryID == "" {
		writeError(w, http.StatusBadRequest, errEntryIDRequired)
		return
	}

	if delErr := h.entryService.Delete(r.Context(), entryID); delErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete entry: %v", delErr))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteEntries handles POST /api/v1/entries/bulk-delete
func (h *EntryHandler) DeleteEntries(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}

	if delErr := h.entryService.DeleteMany(r.Context(), req.IDs); delErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete entries: %v", delErr))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryToResponse(e *journal.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		Tags:      e.Tags,
		Mood:      e.Mood,
		Privacy:   e.Privacy,
		Source:    e.Source,
		SourceID:  e.SourceID,
		SourceURL: e.SourceURL,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

func entriesToListResponse(entries []*journal.Entry, page paginationParams) ListEntriesResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = entryToResponse(e)
	}
	return ListEntriesResponse{
		Data: responses,
		Meta: Meta{Total: len(responses), Limit: page.Limit, Offset: page.Offset},
	}
}
