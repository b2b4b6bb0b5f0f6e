// Package insight runs theme analysis over journal entries and keeps the
// latest set of detected patterns in the store.
package insight

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhsenkow/myfacesnapjournal/internal/infra/llm"
)

// analysisEntryLimit caps how many recent entries feed one analysis run.
const analysisEntryLimit = 100

// Analyzer is the slice of the model adapter the service needs.
type Analyzer interface {
	AnalyzeThemes(ctx context.Context, entries []string) (*llm.ThemeReport, error)
}

// Pattern is a stored recurring theme.
type Pattern struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Strength    float64   `json:"strength"`
	Entries     []string  `json:"entries"`
	Tags        []string  `json:"tags"`
	PatternType string    `json:"pattern_type"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service runs analyses and reads back stored patterns.
type Service struct {
	db       *sql.DB
	analyzer Analyzer
	logger   *slog.Logger
}

// NewService creates an insight Service.
func NewService(db *sql.DB, analyzer Analyzer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, analyzer: analyzer, logger: logger}
}

// Analyze runs theme analysis over the given entry bodies. When entries is
// empty the most recent stored entries are analyzed instead. Detected
// patterns replace the previously stored set: the table always holds the
// latest snapshot, not an accumulating history.
func (s *Service) Analyze(ctx context.Context, entries []string) (*llm.ThemeReport, error) {
	if len(entries) == 0 {
		loaded, err := s.loadRecentContents(ctx)
		if err != nil {
			return nil, err
		}
		entries = loaded
	}

	report, err := s.analyzer.AnalyzeThemes(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("insight: analyze: %w", err)
	}

	if err := s.storePatterns(ctx, report.Patterns); err != nil {
		// The analysis itself succeeded; a storage failure should not hide it.
		s.logger.Warn("store patterns failed", "error", err)
	}

	return report, nil
}

// ListPatterns returns stored patterns, strongest first.
func (s *Service) ListPatterns(ctx context.Context) ([]Pattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, strength, entries, tags, pattern_type, last_seen, created_at
		FROM echo_patterns
		ORDER BY strength DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("insight: list patterns: %w", err)
	}
	defer rows.Close()

	patterns := []Pattern{}
	for rows.Next() {
		var (
			p        Pattern
			entries  string
			tags     string
			lastSeen string
			created  string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Strength,
			&entries, &tags, &p.PatternType, &lastSeen, &created); err != nil {
			return nil, fmt.Errorf("insight: scan pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(entries), &p.Entries); err != nil || p.Entries == nil {
			p.Entries = []string{}
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil || p.Tags == nil {
			p.Tags = []string{}
		}
		if p.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
			return nil, fmt.Errorf("insight: parse last_seen: %w", err)
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("insight: parse created_at: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insight: iterate patterns: %w", err)
	}
	return patterns, nil
}

// loadRecentContents returns the bodies of the most recent entries.
func (s *Service) loadRecentContents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT content FROM journal_entries ORDER BY created_at DESC LIMIT ?",
		analysisEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("insight: load entries: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("insight: scan content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insight: iterate contents: %w", err)
	}
	return contents, nil
}

// storePatterns replaces the stored pattern set in one transaction.
func (s *Service) storePatterns(ctx context.Context, patterns []llm.ThemePattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM echo_patterns"); err != nil {
		return fmt.Errorf("clear patterns: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range patterns {
		entries, err := json.Marshal(orEmpty(p.EntryIDs))
		if err != nil {
			return fmt.Errorf("encode entry ids: %w", err)
		}
		tags, err := json.Marshal(orEmpty(p.Tags))
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO echo_patterns (id, title, description, strength, entries, tags, pattern_type, last_seen, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Title, p.Description, p.Strength,
			string(entries), string(tags), p.PatternType, now, now,
		); err != nil {
			return fmt.Errorf("insert pattern %q: %w", p.Title, err)
		}
	}
	return tx.Commit()
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
