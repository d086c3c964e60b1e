package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/knowledge-tracker/internal/model"
)

const upsertTopicSQL = `
	INSERT INTO topics (id, title, description, category, date_added, mastery, notes, sort_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		category = excluded.category,
		date_added = excluded.date_added,
		mastery = excluded.mastery,
		notes = excluded.notes,
		sort_order = excluded.sort_order`

// topicArgs returns the positional arguments for upsertTopicSQL.
func topicArgs(t model.Topic, sortOrder int) []interface{} {
	return []interface{}{
		t.ID, t.Title, t.Description, t.Category,
		t.DateAdded.UTC(), t.Mastery, t.Notes, sortOrder,
	}
}

// CreateTopic inserts a new topic after all existing ones.
func (s *SQLiteStore) CreateTopic(ctx context.Context, topic model.Topic) error {
	if strings.TrimSpace(topic.ID) == "" {
		return fmt.Errorf("topic id must not be empty")
	}

	var maxOrder int
	if err := s.db.GetContext(ctx, &maxOrder,
		"SELECT COALESCE(MAX(sort_order), 0) FROM topics"); err != nil {
		return fmt.Errorf("reading topic order: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, title, description, category, date_added, mastery, notes, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		topicArgs(topic, maxOrder+1)...,
	)
	if err != nil {
		return fmt.Errorf("creating topic: %w", err)
	}
	return nil
}

// UpdateTopic updates an existing topic's editable fields. The id and
// date added never change.
func (s *SQLiteStore) UpdateTopic(ctx context.Context, topic model.Topic) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE topics SET
			title = ?, description = ?, category = ?, mastery = ?, notes = ?
		WHERE id = ?`,
		topic.Title, topic.Description, topic.Category, topic.Mastery, topic.Notes,
		topic.ID,
	)
	if err != nil {
		return fmt.Errorf("updating topic %s: %w", topic.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("topic %s: %w", topic.ID, ErrNotFound)
	}
	return nil
}

// DeleteTopic removes a topic. CASCADE on flashcards removes its cards in
// the same transaction; the number of removed cards is returned.
func (s *SQLiteStore) DeleteTopic(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var cards int
	if err := tx.GetContext(ctx, &cards,
		"SELECT COUNT(*) FROM flashcards WHERE topic_id = ?", id); err != nil {
		return 0, fmt.Errorf("counting flashcards of topic %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM topics WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting topic %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return 0, fmt.Errorf("topic %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing topic delete: %w", err)
	}
	return cards, nil
}
