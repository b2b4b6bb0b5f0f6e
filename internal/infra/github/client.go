// Package github is a minimal GitHub REST client used by the feedback
// endpoints to file and read issues against the project repository.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultOwner   = "mhsenkow"
	defaultRepo    = "myfacesnapjournal"

	userAgent    = "MyFaceSnapJournal"
	acceptHeader = "application/vnd.github.v3+json"

	defaultTimeout = 15 * time.Second
)

// ErrNoToken is returned by authenticated operations when no token is configured.
var ErrNoToken = errors.New("github: token not configured")

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error: %d - %s", e.Status, e.Body)
}

// CreateIssueRequest is the payload for filing a new issue.
type CreateIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// CreateIssueResponse is the subset of the created issue returned to callers.
type CreateIssueResponse struct {
	Number    int    `json:"number"`
	HTMLURL   string `json:"html_url"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Issue is a GitHub issue as returned by the API.
type Issue struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Labels    []Label `json:"labels"`
	State     string  `json:"state"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	HTMLURL   string  `json:"html_url"`
	User      User    `json:"user"`
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

// User is the issue author.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Options configures a Client. Zero values fall back to the project defaults.
type Options struct {
	// APIBase overrides the GitHub API root, mainly for tests.
	APIBase string
	Owner   string
	Repo    string
	// Token authorizes issue reads and writes. Empty disables them;
	// RepositoryInfo still works unauthenticated.
	Token      string
	HTTPClient *http.Client
}

// Client talks to the GitHub REST API for a single repository.
type Client struct {
	apiBase string
	owner   string
	repo    string
	token   string
	client  *http.Client
}

// New builds a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		apiBase: opts.APIBase,
		owner:   opts.Owner,
		repo:    opts.Repo,
		token:   opts.Token,
		client:  opts.HTTPClient,
	}
	if c.apiBase == "" {
		c.apiBase = defaultAPIBase
	}
	if c.owner == "" {
		c.owner = defaultOwner
	}
	if c.repo == "" {
		c.repo = defaultRepo
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// repoURL returns the API URL for the configured repository plus an optional path suffix.
func (c *Client) repoURL(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.apiBase, c.owner, c.repo, suffix)
}

// CreateIssue files a new issue. Requires a configured token.
func (c *Client) CreateIssue(ctx context.Context, req CreateIssueRequest) (*CreateIssueResponse, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var issue Issue
	if err := c.do(ctx, http.MethodPost, c.repoURL("/issues"), req, true, &issue); err != nil {
		return nil, err
	}

	return &CreateIssueResponse{
		Number:    issue.Number,
		HTMLURL:   issue.HTMLURL,
		State:     issue.State,
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
	}, nil
}

// GetIssue fetches a single issue by number. Requires a configured token.
func (c *Client) GetIssue(ctx context.Context, number int) (*Issue, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var issue Issue
	url := c.repoURL(fmt.Sprintf("/issues/%d", number))
	if err := c.do(ctx, http.MethodGet, url, nil, true, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListIssues fetches all issues in the repository. Requires a configured token.
func (c *Client) ListIssues(ctx context.Context) ([]Issue, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var issues []Issue
	if err := c.do(ctx, http.MethodGet, c.repoURL("/issues"), nil, true, &issues); err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []Issue{}
	}
	return issues, nil
}

// RepositoryInfo fetches repository metadata. Works without a token.
func (c *Client) RepositoryInfo(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.do(ctx, http.MethodGet, c.repoURL(""), nil, false, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// do performs a single API call. The status is checked before decoding so a
// JSON error page never masquerades as a malformed success payload.
func (c *Client) do(ctx context.Context, method, url string, payload any, authed bool, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("github: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	if authed {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("github: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("github: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("github: decode response: %w", err)
		}
	}
	return nil
}
