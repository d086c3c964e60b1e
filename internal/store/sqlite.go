package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode and foreign keys, and runs any pending schema migrations.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps pragmas and in-memory databases consistent
	// and matches SQLite's single-writer model.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys so topic deletion cascades to flashcards.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const (
	topicColumns = `id, title, description, category, date_added, mastery, notes`
	cardColumns  = `id, topic_id, question, answer, ease_factor, interval_days,
		repetitions, next_review, last_review`
)

// LoadTopics returns every topic in insertion order.
func (s *SQLiteStore) LoadTopics(ctx context.Context) ([]model.Topic, error) {
	topics := []model.Topic{}
	err := s.db.SelectContext(ctx, &topics,
		"SELECT "+topicColumns+" FROM topics ORDER BY sort_order, date_added")
	if err != nil {
		return nil, fmt.Errorf("loading topics: %w", err)
	}
	return topics, nil
}

// LoadFlashcards returns every flashcard in insertion order.
func (s *SQLiteStore) LoadFlashcards(ctx context.Context) ([]model.Flashcard, error) {
	cards := []model.Flashcard{}
	err := s.db.SelectContext(ctx, &cards,
		"SELECT "+cardColumns+" FROM flashcards ORDER BY sort_order")
	if err != nil {
		return nil, fmt.Errorf("loading flashcards: %w", err)
	}
	return cards, nil
}

// SaveTopics replaces the stored topic collection with topics. Topics not
// present in the slice are deleted together with their flashcards.
func (s *SQLiteStore) SaveTopics(ctx context.Context, topics []model.Topic) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, upsertTopicSQL)
	if err != nil {
		return fmt.Errorf("preparing topic upsert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(topics))
	for i, t := range topics {
		if _, err := stmt.ExecContext(ctx, topicArgs(t, i+1)...); err != nil {
			return fmt.Errorf("saving topic %s: %w", t.ID, err)
		}
		ids = append(ids, t.ID)
	}

	if err := deleteMissing(ctx, tx, "topics", ids); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveFlashcards replaces the stored flashcard collection with cards. Every
// card must reference a stored topic.
func (s *SQLiteStore) SaveFlashcards(ctx context.Context, cards []model.Flashcard) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, upsertCardSQL)
	if err != nil {
		return fmt.Errorf("preparing flashcard upsert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(cards))
	for i, c := range cards {
		if err := requireTopic(ctx, tx, c.TopicID); err != nil {
			return fmt.Errorf("saving flashcard %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, cardArgs(c, i+1)...); err != nil {
			return fmt.Errorf("saving flashcard %s: %w", c.ID, err)
		}
		ids = append(ids, c.ID)
	}

	if err := deleteMissing(ctx, tx, "flashcards", ids); err != nil {
		return err
	}

	return tx.Commit()
}

// deleteMissing removes rows of table whose id is not in keep.
func deleteMissing(ctx context.Context, tx *sqlx.Tx, table string, keep []string) error {
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id NOT IN (?)", keep)
	if err != nil {
		return fmt.Errorf("building %s cleanup: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("pruning %s: %w", table, err)
	}
	return nil
}

// requireTopic returns ErrForeignKey when topicID is not stored.
func requireTopic(ctx context.Context, q sqlx.QueryerContext, topicID string) error {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM topics WHERE id = ?", topicID); err != nil {
		return fmt.Errorf("checking topic %s: %w", topicID, err)
	}
	if n == 0 {
		return fmt.Errorf("topic %s: %w", topicID, ErrForeignKey)
	}
	return nil
}

// GetSetting returns the value stored under key. ok is false when the key
// has never been set.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}
