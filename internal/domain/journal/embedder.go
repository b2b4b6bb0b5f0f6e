package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mhsenkow/myfacesnapjournal/internal/infra/eventbus"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/llm"
)

const (
	embedMaxRetries = 3
	embedBaseDelay  = 100 * time.Millisecond
)

// Embedder is the slice of the model adapter the worker needs.
type Embedder interface {
	SupportsRealEmbeddings() bool
	Embed(ctx context.Context, req llm.EmbeddingRequest) (*llm.EmbeddingResponse, error)
}

// EmbedWorker consumes entry lifecycle events and maintains one embedding row
// per entry. Stand-in vectors are never persisted: when the adapter cannot
// produce real embeddings the worker skips the entry entirely.
type EmbedWorker struct {
	db       *sql.DB
	embedder Embedder
	logger   *slog.Logger
}

// NewEmbedWorker creates an EmbedWorker backed by the given DB and adapter.
func NewEmbedWorker(db *sql.DB, embedder Embedder, logger *slog.Logger) *EmbedWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbedWorker{db: db, embedder: embedder, logger: logger}
}

// Start subscribes to entry.created and entry.updated and embeds each entry.
// Runs in the calling goroutine — launch with: go w.Start(ctx, bus)
// Stops when ctx is cancelled.
func (w *EmbedWorker) Start(ctx context.Context, bus eventbus.EventBus) {
	created := bus.Subscribe(eventbus.TopicEntryCreated)
	updated := bus.Subscribe(eventbus.TopicEntryUpdated)
	for {
		var evt eventbus.Event
		select {
		case <-ctx.Done():
			return
		case evt = <-created:
		case evt = <-updated:
		}

		entry, ok := evt.Payload.(*Entry)
		if !ok {
			continue
		}
		// Best-effort: log error but keep running
		if err := w.EmbedEntry(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("embed entry failed", "entry_id", entry.ID, "error", err)
		}
	}
}

// EmbedEntry computes and stores the embedding for one entry. A row whose
// content_hash already matches is left untouched.
func (w *EmbedWorker) EmbedEntry(ctx context.Context, entry *Entry) error {
	if !w.embedder.SupportsRealEmbeddings() {
		return nil
	}

	hash := contentHash(entry.Content)

	var existing string
	err := w.db.QueryRowContext(ctx,
		"SELECT content_hash FROM embeddings WHERE entry_id = ?", entry.ID).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("embedder: check existing: %w", err)
	}
	if existing == hash {
		return nil
	}

	resp, err := w.callEmbedWithRetry(ctx, entry.Content)
	if err != nil {
		return fmt.Errorf("embedder: embed: %w", err)
	}

	blob, err := json.Marshal(resp.Embedding)
	if err != nil {
		return fmt.Errorf("embedder: encode vector: %w", err)
	}

	_, err = w.db.ExecContext(ctx, `
		INSERT INTO embeddings (id, entry_id, content_hash, embedding_blob, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_id) DO UPDATE SET
			content_hash = excluded.content_hash,
			embedding_blob = excluded.embedding_blob,
			model = excluded.model,
			created_at = excluded.created_at`,
		uuid.NewString(), entry.ID, hash, blob, resp.Model,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("embedder: store vector: %w", err)
	}
	return nil
}

// Embedding is a stored entry vector.
type Embedding struct {
	ID          string    `json:"id"`
	EntryID     string    `json:"entry_id"`
	ContentHash string    `json:"content_hash"`
	Vector      []float32 `json:"vector"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetEmbedding returns the stored embedding for an entry, or ErrNotFound.
func (w *EmbedWorker) GetEmbedding(ctx context.Context, entryID string) (*Embedding, error) {
	var (
		emb     Embedding
		blob    []byte
		created string
	)
	err := w.db.QueryRowContext(ctx, `
		SELECT id, entry_id, content_hash, embedding_blob, model, created_at
		FROM embeddings WHERE entry_id = ?`, entryID).
		Scan(&emb.ID, &emb.EntryID, &emb.ContentHash, &blob, &emb.Model, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("embedder: get embedding: %w", err)
	}

	if err := json.Unmarshal(blob, &emb.Vector); err != nil {
		return nil, fmt.Errorf("embedder: decode vector: %w", err)
	}
	if emb.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("embedder: parse created_at: %w", err)
	}
	return &emb, nil
}

// callEmbedWithRetry calls the adapter with exponential backoff.
// Attempts: embedMaxRetries (100ms, 200ms delays between them).
func (w *EmbedWorker) callEmbedWithRetry(ctx context.Context, text string) (*llm.EmbeddingResponse, error) {
	var lastErr error
	delay := embedBaseDelay
	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		resp, err := w.embedder.Embed(ctx, llm.EmbeddingRequest{Text: text})
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all %d retries failed: %w", embedMaxRetries, lastErr)
}

// contentHash returns the hex SHA-256 of the entry content.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
