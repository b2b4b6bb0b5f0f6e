// HTTP handler for stored echo patterns.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/mhsenkow/myfacesnapjournal/internal/domain/insight"
)

// PatternHandler serves patterns persisted by previous theme analyses.
type PatternHandler struct {
	insightSvc *insight.Service
}

// NewPatternHandler creates a new PatternHandler instance.
func NewPatternHandler(insightSvc *insight.Service) *PatternHandler {
	return &PatternHandler{insightSvc: insightSvc}
}

// ListPatternsResponse is the response body for GET /api/v1/patterns.
type ListPatternsResponse struct {
	Data []insight.Pattern `json:"data"`
}

// ListPatterns handles GET /api/v1/patterns
func (h *PatternHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, svcErr := h.insightSvc.ListPatterns(r.Context())
	if svcErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list patterns: %v", svcErr))
		return
	}

	writeJSON(w, http.StatusOK, ListPatternsResponse{Data: patterns})
}
