// Unit tests for the HTTP backend driver. Uses httptest.NewServer to
// mock the runner's REST API — no real Ollama needed.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newHTTPAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New(Options{Backend: string(BackendHTTPRunner), Location: baseURL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestHTTPChat_HappyPath(t *testing.T) {
	t.Parallel()

	var captured runnerChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"message": map[string]string{"role": "assistant", "content": "Hi there"},
			"done":    true,
		})
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	resp, err := a.Chat(context.Background(), ChatRequest{Message: "Hello"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Response != "Hi there" {
		t.Errorf("expected 'Hi there', got %q", resp.Response)
	}
	if resp.Model != "llama3.2" {
		t.Errorf("expected default chat model, got %q", resp.Model)
	}
	if resp.TokensUsed != nil {
		t.Errorf("expected nil TokensUsed, got %v", *resp.TokensUsed)
	}

	// Outbound body: exactly two messages, roles system/user, stream false.
	if captured.Model != "llama3.2" {
		t.Errorf("outbound model: got %q", captured.Model)
	}
	if captured.Stream {
		t.Error("outbound stream flag must be false")
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 outbound messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("outbound roles: got [%q, %q]", captured.Messages[0].Role, captured.Messages[1].Role)
	}
	if captured.Messages[1].Content != "Hello" {
		t.Errorf("user message must be the request verbatim, got %q", captured.Messages[1].Content)
	}
}

func TestHTTPChat_StatusCheckedBeforeParse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Chat(context.Background(), ChatRequest{Message: "Hello"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError, got %v", err)
	}
	if be.Status != http.StatusNotFound {
		t.Errorf("expected status 404 on the error, got %d", be.Status)
	}
}

func TestHTTPChat_NonJSONBody_ReturnsBackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Chat(context.Background(), ChatRequest{Message: "Hello"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError for non-JSON body, got %v", err)
	}
}

func TestHTTPChat_MissingMessageContent_ReturnsBackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"done":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Chat(context.Background(), ChatRequest{Message: "Hello"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError for missing message.content, got %v", err)
	}
}

func TestHTTPChat_TransportError_ReturnsBackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before the call

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Chat(context.Background(), ChatRequest{Message: "Hello"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError for transport failure, got %v", err)
	}
}

func TestHTTPChat_Cancellation_SurfacesContextError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body) //nolint:errcheck // drain so the server can detect client disconnect
		<-r.Context().Done()        // hold the request open until the client gives up
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Chat(ctx, ChatRequest{Message: "Hello"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
	var be *BackendError
	if errors.As(err, &be) {
		t.Errorf("cancellation must not surface as *BackendError: %v", err)
	}
}

func TestHTTPEmbed_UsesEmbeddingsEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		var req runnerEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt != "hello" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(runnerEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}}) //nolint:errcheck
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	resp, err := a.Embed(context.Background(), EmbeddingRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(resp.Embedding) != 3 {
		t.Errorf("expected the server's 3-dim vector, got %d dims", len(resp.Embedding))
	}
	if resp.Model != "nomic-embed-text" {
		t.Errorf("expected default embedding model, got %q", resp.Model)
	}
}

func TestHTTPEmbed_ServerError_ReturnsBackendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	_, err := a.Embed(context.Background(), EmbeddingRequest{Text: "hello"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BackendError, got %v", err)
	}
	if be.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500 on the error, got %d", be.Status)
	}
}

func TestHTTPChat_ModelOverride(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req runnerChatRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Model != "mistral" {
			http.Error(w, "wrong model", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	a := newHTTPAdapter(t, srv.URL)
	resp, err := a.Chat(context.Background(), ChatRequest{Message: "hi", Model: "mistral"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Model != "mistral" {
		t.Errorf("response model should echo the override, got %q", resp.Model)
	}
}
