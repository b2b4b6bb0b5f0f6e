// Package llm defines the request/response types shared between the
// adapter facade and its backend drivers. All records are plain values:
// they are built per call and carry no identity beyond their fields.
package llm

// EmbeddingRequest asks for a dense vector representation of Text.
type EmbeddingRequest struct {
	// Text to embed. Must not be empty.
	Text string `json:"text"`
	// Model overrides the adapter's default embedding model when non-empty.
	Model string `json:"model,omitempty"`
}

// EmbeddingResponse carries the vector and the model that produced it.
// The stand-in vectorizer always produces exactly 384 components in [-1, 1];
// a live embedding server returns whatever dimension its model uses.
type EmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// ChatRequest is a single-turn chat exchange with optional context.
type ChatRequest struct {
	// Message is the user's turn. Must not be empty.
	Message string `json:"message"`
	// Context is optional background woven into the system prompt
	// (HTTP backend) or the flat prompt (process backend).
	Context string `json:"context,omitempty"`
	// Model overrides the adapter's default chat model when non-empty.
	Model string `json:"model,omitempty"`
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	// Response text. The process driver trims surrounding whitespace;
	// the HTTP driver returns the server's content verbatim.
	Response string `json:"response"`
	Model    string `json:"model"`
	// TokensUsed is nil when the backend does not report token counts
	// (neither local backend does in non-streaming mode).
	TokensUsed *int `json:"tokens_used,omitempty"`
}

// ThemeReport is the structured output of theme analysis over a batch
// of entry bodies.
type ThemeReport struct {
	Patterns []ThemePattern `json:"patterns"`
	Insights []string       `json:"insights"`
	// MoodTrends maps mood label to a fraction. Wire format from the
	// model is a percentage; values are divided by 100 on parse and
	// deliberately not clamped, so "120%" becomes 1.2.
	MoodTrends map[string]float64 `json:"mood_trends"`
}

// ThemePattern is one recurring theme detected in the entries.
type ThemePattern struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Strength    float64  `json:"strength"`
	EntryIDs    []string `json:"entry_ids"`
	Tags        []string `json:"tags"`
	PatternType string   `json:"pattern_type"`
}
