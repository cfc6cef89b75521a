package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	metaCurrentGeneration = "current_generation"
	metaNextGeneration    = "next_generation"
)

// Item is one indexed chunk with its embedding vector. Vectors are stored
// unit-normalized so the dot product at query time is the cosine similarity.
type Item struct {
	ID               string
	ChunkType        string
	Text             string
	Start            float64
	End              float64
	Timed            bool
	SegmentIndex     int
	Language         string
	SourceName       string
	SourceConfidence float64
	Vector           []float32
}

// Duration returns the item's time span, 0 for untimed items.
func (i Item) Duration() float64 {
	if !i.Timed || i.End <= i.Start {
		return 0
	}
	return i.End - i.Start
}

// Stats summarizes the index contents.
type Stats struct {
	Path              string
	HasCurrent        bool
	CurrentGeneration int64
	CurrentChunks     int64
	TotalRows         int64
}

// Store persists indexed chunks in SQLite, partitioned by generation so a
// replacement can be written in full before any query sees it.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the index database and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// AllocateGeneration reserves the next generation number. Generations are
// never reused, including across process restarts.
func (s *Store) AllocateGeneration(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin generation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	err = tx.QueryRowContext(ctx, "SELECT value FROM corpus_meta WHERE key = ?", metaNextGeneration).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read next generation: %w", err)
	}
	next++

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO corpus_meta (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaNextGeneration, next); err != nil {
		return 0, fmt.Errorf("store next generation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit generation: %w", err)
	}
	return next, nil
}

// Upsert writes items into the given generation in one transaction.
func (s *Store) Upsert(ctx context.Context, generation int64, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO indexed_chunks (
            id, generation, chunk_type, text, start_time, end_time, timed,
            segment_index, duration, language, source_name, source_confidence,
            embedding, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("upsert: item without id")
		}
		if len(item.Vector) == 0 {
			return fmt.Errorf("upsert: item %s has no vector", item.ID)
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID,
			generation,
			item.ChunkType,
			item.Text,
			item.Start,
			item.End,
			boolToInt(item.Timed),
			item.SegmentIndex,
			item.Duration(),
			item.Language,
			item.SourceName,
			item.SourceConfidence,
			encodeVector(item.Vector),
			now,
		); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// CurrentGeneration returns the durable current generation pointer. The
// second return value is false when no corpus has been stored yet.
func (s *Store) CurrentGeneration(ctx context.Context) (int64, bool, error) {
	var generation int64
	err := s.db.QueryRowContext(ctx, "SELECT value FROM corpus_meta WHERE key = ?", metaCurrentGeneration).Scan(&generation)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read current generation: %w", err)
	}
	return generation, true, nil
}

// SetCurrentGeneration flips the durable current generation pointer. This is
// the single atomic step of a corpus replacement.
func (s *Store) SetCurrentGeneration(ctx context.Context, generation int64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO corpus_meta (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaCurrentGeneration, generation); err != nil {
		return fmt.Errorf("set current generation: %w", err)
	}
	return nil
}

// ClearCurrentGeneration removes the pointer, leaving the index with no
// queryable corpus.
func (s *Store) ClearCurrentGeneration(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM corpus_meta WHERE key = ?", metaCurrentGeneration); err != nil {
		return fmt.Errorf("clear current generation: %w", err)
	}
	return nil
}

// DeleteGeneration removes one generation's rows, used to discard a
// partially written replacement.
func (s *Store) DeleteGeneration(ctx context.Context, generation int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM indexed_chunks WHERE generation = ?", generation); err != nil {
		return fmt.Errorf("delete generation %d: %w", generation, err)
	}
	return nil
}

// RetireExcept deletes every generation other than the one to keep.
func (s *Store) RetireExcept(ctx context.Context, keep int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM indexed_chunks WHERE generation != ?", keep); err != nil {
		return fmt.Errorf("retire generations: %w", err)
	}
	return nil
}

// DeleteAll removes every indexed chunk and the current pointer.
func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM indexed_chunks"); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM corpus_meta WHERE key = ?", metaCurrentGeneration); err != nil {
		return fmt.Errorf("clear current generation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// Stats reports the index size and current generation.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}

	generation, ok, err := s.CurrentGeneration(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.HasCurrent = ok
	stats.CurrentGeneration = generation

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM indexed_chunks").Scan(&stats.TotalRows); err != nil {
		return Stats{}, fmt.Errorf("count rows: %w", err)
	}
	if ok {
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM indexed_chunks WHERE generation = ?", generation).Scan(&stats.CurrentChunks); err != nil {
			return Stats{}, fmt.Errorf("count current chunks: %w", err)
		}
	}
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
