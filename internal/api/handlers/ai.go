// HTTP handlers for the AI endpoints: embeddings, chat, theme analysis,
// model discovery, and availability.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mhsenkow/myfacesnapjournal/internal/domain/insight"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/llm"
)

// AIHandler handles HTTP requests that talk to the local model adapter.
type AIHandler struct {
	adapter    *llm.Adapter
	insightSvc *insight.Service
}

// NewAIHandler creates a new AIHandler instance.
func NewAIHandler(adapter *llm.Adapter, insightSvc *insight.Service) *AIHandler {
	return &AIHandler{adapter: adapter, insightSvc: insightSvc}
}

// EmbedRequest is the request body for POST /api/v1/ai/embed.
type EmbedRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// ChatRequest is the request body for POST /api/v1/ai/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
	Model   string `json:"model,omitempty"`
}

// ThemesRequest is the request body for POST /api/v1/ai/themes.
// Entries may be omitted; the service then analyzes stored entries.
type ThemesRequest struct {
	Entries []string `json:"entries,omitempty"`
}

// AvailabilityResponse is the response body for GET /api/v1/ai/availability.
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
}

// ModelsResponse is the response body for GET /api/v1/ai/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// Embed handles POST /api/v1/ai/embed
func (h *AIHandler) Embed(w http.ResponseWriter, r *http.Request) {
	var req EmbedRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	resp, svcErr := h.adapter.Embed(r.Context(), llm.EmbeddingRequest{
		Text:  req.Text,
		Model: req.Model,
	})
	if svcErr != nil {
		writeAIError(w, "failed to generate embedding", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Chat handles POST /api/v1/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	resp, svcErr := h.adapter.Chat(r.Context(), llm.ChatRequest{
		Message: req.Message,
		Context: req.Context,
		Model:   req.Model,
	})
	if svcErr != nil {
		writeAIError(w, "failed to generate chat response", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Themes handles POST /api/v1/ai/themes
func (h *AIHandler) Themes(w http.ResponseWriter, r *http.Request) {
	var req ThemesRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	report, svcErr := h.insightSvc.Analyze(r.Context(), req.Entries)
	if svcErr != nil {
		writeAIError(w, "failed to analyze themes", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Models handles GET /api/v1/ai/models
func (h *AIHandler) Models(w http.ResponseWriter, r *http.Request) {
	models, svcErr := h.adapter.ListModels(r.Context())
	if svcErr != nil {
		writeAIError(w, "failed to list models", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}

// Availability handles GET /api/v1/ai/availability
func (h *AIHandler) Availability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Available: h.adapter.Probe(r.Context()),
		Backend:   string(h.adapter.Backend()),
	})
}

// writeAIError maps adapter errors to HTTP statuses: empty input is the
// caller's fault, a backend failure is a bad gateway, anything else is 500.
func writeAIError(w http.ResponseWriter, prefix string, err error) {
	var backendErr *llm.BackendError
	switch {
	case errors.Is(err, llm.ErrEmptyText), errors.Is(err, llm.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &backendErr):
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", prefix, err))
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", prefix, err))
	}
}
