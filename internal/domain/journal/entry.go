// Package journal provides domain logic for journal entries.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mhsenkow/myfacesnapjournal/internal/infra/eventbus"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("journal: entry not found")

// Entry domain model.
type Entry struct {
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
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateEntryInput defines required + optional fields for entry creation.
type CreateEntryInput struct {
	Title     string
	Content   string
	Tags      []string
	Mood      string
	Privacy   string
	Source    string
	SourceID  string
	SourceURL string
	Metadata  json.RawMessage
}

// UpdateEntryInput defines fields that can be updated.
type UpdateEntryInput struct {
	Title   string
	Content string
	Tags    []string
	Mood    string
	Privacy string
}

// ListEntriesInput defines pagination for entry listings.
type ListEntriesInput struct {
	Limit  int
	Offset int
}

// Stats summarizes store contents.
type Stats struct {
	Entries    int64 `json:"entries"`
	Patterns   int64 `json:"patterns"`
	Embeddings int64 `json:"embeddings"`
}

const defaultListLimit = 100

// EntryService provides journal entry operations backed by SQLite.
// Lifecycle events are published on the bus so the embedding worker can
// react without blocking writes.
type EntryService struct {
	db  *sql.DB
	bus eventbus.EventBus
}

// NewEntryService creates an EntryService instance.
func NewEntryService(db *sql.DB, bus eventbus.EventBus) *EntryService {
	return &EntryService{db: db, bus: bus}
}

const entryColumns = "id, title, content, tags, mood, privacy, source, source_id, source_url, metadata, created_at, updated_at"

// Create inserts a new entry and publishes entry.created.
func (s *EntryService) Create(ctx context.Context, input CreateEntryInput) (*Entry, error) {
	now := time.Now().UTC()
	entry := &Entry{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Content:   input.Content,
		Tags:      input.Tags,
		Mood:      optString(input.Mood),
		Privacy:   input.Privacy,
		Source:    input.Source,
		SourceID:  optString(input.SourceID),
		SourceURL: optString(input.SourceURL),
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if entry.Privacy == "" {
		entry.Privacy = "private"
	}
	if entry.Source == "" {
		entry.Source = "local"
	}

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Title, entry.Content, string(tags), entry.Mood,
		entry.Privacy, entry.Source, entry.SourceID, entry.SourceURL,
		rawOrNil(entry.Metadata),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.bus.Publish(eventbus.TopicEntryCreated, entry)
	return entry, nil
}

// Get retrieves an entry by ID.
func (s *EntryService) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// Update modifies an entry's editable fields and publishes entry.updated.
func (s *EntryService) Update(ctx context.Context, id string, input UpdateEntryInput) (*Entry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if input.Tags == nil {
		input.Tags = []string{}
	}
	tags, err := json.Marshal(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE journal_entries
		SET title = ?, content = ?, tags = ?, mood = ?, privacy = ?, updated_at = ?
		WHERE id = ?`,
		input.Title, input.Content, string(tags), optString(input.Mood),
		input.Privacy, now.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(eventbus.TopicEntryUpdated, entry)
	return entry, nil
}

// Delete removes an entry. Embeddings cascade via the FK. Deleting a
// missing entry is a no-op.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.bus.Publish(eventbus.TopicEntryDeleted, id)
	return nil
}

// DeleteMany removes a batch of entries, stopping at the first failure.
func (s *EntryService) DeleteMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves entries newest-first with pagination.
func (s *EntryService) List(ctx context.Context, input ListEntriesInput) ([]*Entry, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Search matches query as a substring of title, content, or tags, newest-first.
func (s *EntryService) Search(ctx context.Context, query string) ([]*Entry, error) {
	term := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM journal_entries
		WHERE title LIKE ? OR content LIKE ? OR tags LIKE ?
		ORDER BY created_at DESC`,
		term, term, term)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetStats counts rows across the journal tables.
func (s *EntryService) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		table string
		dst   *int64
	}{
		{"journal_entries", &stats.Entries},
		{"echo_patterns", &stats.Patterns},
		{"embeddings", &stats.Embeddings},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return &stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e        Entry
		tags     string
		metadata sql.NullString
		created  string
		updated  string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Content, &tags, &e.Mood, &e.Privacy,
		&e.Source, &e.SourceID, &e.SourceURL, &metadata, &created, &updated)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil || e.Tags == nil {
		e.Tags = []string{}
	}
	if metadata.Valid {
		e.Metadata = json.RawMessage(metadata.String)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	entries := []*Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// rawOrNil maps empty metadata to SQL NULL instead of an empty string.
func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
