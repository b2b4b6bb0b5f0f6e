// HTTP handlers for the GitHub feedback endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mhsenkow/myfacesnapjournal/internal/infra/github"
)

// FeedbackHandler files and reads GitHub issues for user feedback.
type FeedbackHandler struct {
	client *github.Client
}

// NewFeedbackHandler creates a new FeedbackHandler instance.
func NewFeedbackHandler(client *github.Client) *FeedbackHandler {
	return &FeedbackHandler{client: client}
}

// CreateIssueRequest is the request body for filing feedback.
type CreateIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// CreateIssue handles POST /api/v1/feedback/issues
func (h *FeedbackHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	resp, svcErr := h.client.CreateIssue(r.Context(), github.CreateIssueRequest{
		Title:  req.Title,
		Body:   req.Body,
		Labels: req.Labels,
	})
	if svcErr != nil {
		writeGitHubError(w, "failed to create issue", svcErr)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListIssues handles GET /api/v1/feedback/issues
func (h *FeedbackHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, svcErr := h.client.ListIssues(r.Context())
	if svcErr != nil {
		writeGitHubError(w, "failed to list issues", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, issues)
}

// GetIssue handles GET /api/v1/feedback/issues/{number}
func (h *FeedbackHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	number, convErr := strconv.Atoi(chi.URLParam(r, "number"))
	if convErr != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "number must be a positive integer")
		return
	}

	issue, svcErr := h.client.GetIssue(r.Context(), number)
	if svcErr != nil {
		writeGitHubError(w, "failed to get issue", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

// RepositoryInfo handles GET /api/v1/feedback/repo
func (h *FeedbackHandler) RepositoryInfo(w http.ResponseWriter, r *http.Request) {
	info, svcErr := h.client.RepositoryInfo(r.Context())
	if svcErr != nil {
		writeGitHubError(w, "failed to fetch repository info", svcErr)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// writeGitHubError maps client errors: a missing token means feedback is not
// configured on this install, a 404 from GitHub passes through, everything
// else is a bad gateway.
func writeGitHubError(w http.ResponseWriter, prefix string, err error) {
	var apiErr *github.APIError
	switch {
	case errors.Is(err, github.ErrNoToken):
		writeError(w, http.StatusServiceUnavailable, "github feedback is not configured")
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		writeError(w, http.StatusNotFound, "issue not found")
	default:
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", prefix, err))
	}
}
