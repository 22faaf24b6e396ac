// Package store persists post history in SQLite. The agent uses it for
// duplicate checks, so records are written even for dry runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one published (or dry-run) post.
type Record struct {
	ID        string
	Platform  string
	Content   string
	PostID    string
	URL       string
	DryRun    bool
	CreatedAt time.Time
}

// Store wraps the posts database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the post history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open post store: %w", err)
	}

	// WAL keeps readers unblocked while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	return &Store{db: db, logger: logger.With("component", "store")}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	platform   TEXT NOT NULL,
	content    TEXT NOT NULL,
	post_id    TEXT NOT NULL DEFAULT '',
	url        TEXT NOT NULL DEFAULT '',
	dry_run    INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_platform_created ON posts(platform, created_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate post store: %w", err)
	}
	return nil
}

// RecordPost saves a post and returns its row id.
func (s *Store) RecordPost(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, platform, content, post_id, url, dry_run, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Platform, rec.Content, rec.PostID, rec.URL, rec.DryRun, rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("record post: %w", err)
	}

	s.logger.Debug("post recorded", "platform", rec.Platform, "dry_run", rec.DryRun)
	return rec.ID, nil
}

// RecentPosts returns posts for a platform made within the window, newest
// first. An empty platform matches all platforms.
func (s *Store) RecentPosts(ctx context.Context, platform string, within time.Duration, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	cutoff := time.Now().UTC().Add(-within)

	query := `SELECT id, platform, content, post_id, url, dry_run, created_at
		FROM posts WHERE created_at >= ?`
	args := []any{cutoff}
	if platform != "" {
		query += ` AND platform = ?`
		args = append(args, platform)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Platform, &rec.Content, &rec.PostID, &rec.URL, &rec.DryRun, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
