// Adapter facade: the single externally visible object of this package.
// Each operation pattern-matches on the backend selected at construction
// exactly once and dispatches to the matching driver. The adapter holds
// only immutable configuration after New returns, so one instance is
// safe to share across concurrent requests without locks.
package llm

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Backend selects which external model-serving mechanism the adapter drives.
type Backend string

const (
	// BackendHTTPRunner is a locally running model server reachable by
	// REST on a configurable URL (Ollama or compatible).
	BackendHTTPRunner Backend = "http-runner"
	// BackendProcessBinary is a locally installed model-runner
	// executable invoked per request (llama.cpp style).
	BackendProcessBinary Backend = "process-binary"
)

const (
	// EnvBaseURL overrides the HTTP runner's base URL. The name is
	// historical — the runner has always been Ollama in practice.
	EnvBaseURL     = "OLLAMA_URL"
	defaultBaseURL = "http://localhost:11434"

	defaultEmbeddingModel = "nomic-embed-text"
	defaultChatModel      = "llama3.2"
)

// defaultAdvertisedModels is what the process backend claims to offer;
// it cannot enumerate models itself.
var defaultAdvertisedModels = []string{"llama3.2", "codellama:7b"}

// defaultListCommand is the discovery invocation for the HTTP runner's
// catalog and probe.
var defaultListCommand = []string{"ollama", "list"}

// Options configures New. Zero values select the documented defaults.
type Options struct {
	// Backend tag: "http-runner" or "process-binary". Required.
	Backend string
	// Location is the base URL (http-runner) or executable path
	// (process-binary). For http-runner an empty Location falls back to
	// $OLLAMA_URL, then to http://localhost:11434.
	Location string
	// EmbeddingModel is the default model for embed requests that omit
	// one. Default "nomic-embed-text".
	EmbeddingModel string
	// ChatModel is the default model for chat and theme-analysis
	// requests. Default "llama3.2".
	ChatModel string
	// AdvertisedModels is the fixed catalog the process backend
	// returns from ListModels.
	AdvertisedModels []string
	// ListCommand replaces the "ollama list" discovery invocation.
	// Only tests should need this.
	ListCommand []string
	// RequestTimeout bounds each HTTP call. Zero means no adapter-level
	// timeout; the host is expected to wrap calls in a context deadline.
	RequestTimeout time.Duration
	// Logger receives non-fatal diagnostics (skipped report lines,
	// swallowed analysis failures). Defaults to slog.Default().
	Logger *slog.Logger
}

// Adapter mediates between the client-facing contract (embed, chat, list
// models, probe, analyze themes) and the selected backend driver.
type Adapter struct {
	backend    Backend
	http       *httpRunner    // non-nil iff backend == BackendHTTPRunner
	proc       *processBinary // non-nil iff backend == BackendProcessBinary
	embedModel string
	chatModel  string
	advertised []string
	listCmd    []string
	logger     *slog.Logger
}

// New builds an Adapter for the selected backend. The only failure modes
// are configuration: an unrecognized backend tag or a malformed base URL.
func New(opts Options) (*Adapter, error) {
	a := &Adapter{
		backend:    Backend(opts.Backend),
		embedModel: opts.EmbeddingModel,
		chatModel:  opts.ChatModel,
		advertised: opts.AdvertisedModels,
		listCmd:    opts.ListCommand,
		logger:     opts.Logger,
	}
	if a.embedModel == "" {
		a.embedModel = defaultEmbeddingModel
	}
	if a.chatModel == "" {
		a.chatModel = defaultChatModel
	}
	if a.advertised == nil {
		a.advertised = defaultAdvertisedModels
	}
	if a.listCmd == nil {
		a.listCmd = defaultListCommand
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	switch a.backend {
	case BackendHTTPRunner:
		base := opts.Location
		if base == "" {
			base = os.Getenv(EnvBaseURL)
		}
		if base == "" {
			base = defaultBaseURL
		}
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, &ConfigError{Field: "location", Value: base, Reason: "not a valid base URL"}
		}
		a.http = &httpRunner{
			baseURL: base,
			client:  &http.Client{Timeout: opts.RequestTimeout},
		}
	case BackendProcessBinary:
		if opts.Location == "" {
			return nil, &ConfigError{Field: "location", Value: "", Reason: "process-binary requires an executable path"}
		}
		a.proc = &processBinary{path: opts.Location}
	default:
		return nil, &ConfigError{Field: "backend", Value: opts.Backend, Reason: "unknown backend tag"}
	}
	return a, nil
}

// Backend returns the tag the adapter was constructed with.
func (a *Adapter) Backend() Backend { return a.backend }

// SupportsRealEmbeddings reports whether Embed returns vectors produced
// by an actual model. When false, Embed returns the deterministic
// stand-in, which must not feed similarity search.
func (a *Adapter) SupportsRealEmbeddings() bool {
	return a.backend == BackendHTTPRunner
}

// Probe reports whether the selected backend can be contacted at all.
// It never fails: every underlying error collapses to false. A true
// result means only that the spawn succeeded — callers needing
// functional readiness should follow up with ListModels or a trivial
// Chat.
func (a *Adapter) Probe(ctx context.Context) bool {
	switch a.backend {
	case BackendHTTPRunner:
		_, _, err := a.runDiscovery(ctx)
		return err == nil
	case BackendProcessBinary:
		return a.proc.probe(ctx)
	}
	return false
}

// Embed produces a vector for the request text. The HTTP runner performs
// a real embedding call; the process backend substitutes the
// deterministic stand-in (see SupportsRealEmbeddings).
func (a *Adapter) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}
	switch a.backend {
	case BackendHTTPRunner:
		model := req.Model
		if model == "" {
			model = a.embedModel
		}
		vec, err := a.http.embed(ctx, model, req.Text)
		if err != nil {
			return nil, err
		}
		return &EmbeddingResponse{Embedding: vec, Model: model}, nil
	default:
		return &EmbeddingResponse{Embedding: standInVector(req.Text), Model: standInModel}, nil
	}
}

// Chat produces a single non-streaming reply.
func (a *Adapter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	switch a.backend {
	case BackendHTTPRunner:
		model := req.Model
		if model == "" {
			model = a.chatModel
		}
		content, err := a.http.chat(ctx, model, systemPrompt(req.Context), req.Message)
		if err != nil {
			return nil, err
		}
		return &ChatResponse{Response: content, Model: model}, nil
	default:
		out, err := a.proc.chat(ctx, flatPrompt(req.Message, req.Context))
		if err != nil {
			return nil, err
		}
		return &ChatResponse{Response: out, Model: processModelLabel}, nil
	}
}

// ListModels returns the model identifiers the backend advertises. The
// HTTP runner's list comes from the discovery command; a discovery
// process that spawns but exits non-zero yields an empty list, not an
// error. The process backend returns its configured list verbatim.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	switch a.backend {
	case BackendHTTPRunner:
		out, exited, err := a.runDiscovery(ctx)
		if err != nil {
			return nil, err
		}
		if !exited {
			return []string{}, nil
		}
		return parseModelList(out), nil
	default:
		models := make([]string, len(a.advertised))
		copy(models, a.advertised)
		return models, nil
	}
}
