// HTTP backend driver: talks to a locally running model server (Ollama
// or compatible) over its REST API using stdlib net/http.
// Endpoints used:
//   - POST /api/chat        — non-streaming chat completion
//   - POST /api/embeddings  — single text embedding
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
)

// httpRunner drives the HTTP backend. The http.Client and its connection
// pool are shared across calls; the runner holds no per-request state.
type httpRunner struct {
	baseURL string
	client  *http.Client
}

// ─── wire types ──────────────────────────────────────────────────────────────

type runnerChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runnerChatRequest struct {
	Model    string              `json:"model"`
	Messages []runnerChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type runnerChatResponse struct {
	// Message is a pointer so a body without the field decodes to nil
	// instead of a zero struct.
	Message *runnerChatMessage `json:"message"`
	Done    bool               `json:"done"`
}

type runnerEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type runnerEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// ─── operations ──────────────────────────────────────────────────────────────

// chat performs a non-streaming completion with a system + user turn and
// returns the assistant content verbatim.
func (r *httpRunner) chat(ctx context.Context, model, system, user string) (string, error) {
	body, err := json.Marshal(runnerChatRequest{
		Model: model,
		Messages: []runnerChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	raw, postErr := r.doPost(ctx, "chat", "/api/chat", body)
	if postErr != nil {
		return "", postErr
	}

	var resp runnerChatResponse
	if decodeErr := json.Unmarshal(raw, &resp); decodeErr != nil {
		return "", &BackendError{Op: "chat", Backend: string(BackendHTTPRunner), Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if resp.Message == nil || resp.Message.Content == "" {
		return "", &BackendError{Op: "chat", Backend: string(BackendHTTPRunner), Err: fmt.Errorf("response missing message.content")}
	}
	return resp.Message.Content, nil
}

// embed requests a single embedding vector for text.
func (r *httpRunner) embed(ctx context.Context, model, text string) ([]float32, error) {
	body, err := json.Marshal(runnerEmbedRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, err
	}

	raw, postErr := r.doPost(ctx, "embed", "/api/embeddings", body)
	if postErr != nil {
		return nil, postErr
	}

	var resp runnerEmbedResponse
	if decodeErr := json.Unmarshal(raw, &resp); decodeErr != nil {
		return nil, &BackendError{Op: "embed", Backend: string(BackendHTTPRunner), Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	return resp.Embedding, nil
}

// doPost sends a JSON POST and returns the full response body.
// Status is checked before any decode so a 4xx/5xx surfaces as a
// BackendError carrying the status code rather than a parse error.
// Cancellation surfaces as the context's own error, never a BackendError.
func (r *httpRunner) doPost(ctx context.Context, op, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Op: op, Backend: string(BackendHTTPRunner), Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set(headerContentType, mimeJSON)

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &BackendError{Op: op, Backend: string(BackendHTTPRunner), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &BackendError{Op: op, Backend: string(BackendHTTPRunner), Err: fmt.Errorf("read response: %w", readErr)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{Op: op, Backend: string(BackendHTTPRunner), Status: resp.StatusCode}
	}
	return raw, nil
}
