package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/knowledge-tracker/internal/model"
)

const upsertCardSQL = `
	INSERT INTO flashcards (id, topic_id, question, answer, ease_factor, interval_days,
		repetitions, next_review, last_review, sort_order)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		topic_id = excluded.topic_id,
		question = excluded.question,
		answer = excluded.answer,
		ease_factor = excluded.ease_factor,
		interval_days = excluded.interval_days,
		repetitions = excluded.repetitions,
		next_review = excluded.next_review,
		last_review = excluded.last_review,
		sort_order = excluded.sort_order`

// cardArgs returns the positional arguments for upsertCardSQL.
func cardArgs(c model.Flashcard, sortOrder int) []interface{} {
	return []interface{}{
		c.ID, c.TopicID, c.Question, c.Answer, c.EaseFactor, c.Interval,
		c.Repetitions, c.NextReview.UTC(), utcPtr(c.LastReview), sortOrder,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// CreateFlashcard inserts a new card after all existing ones. The card's
// topic must exist.
func (s *SQLiteStore) CreateFlashcard(ctx context.Context, card model.Flashcard) error {
	if strings.TrimSpace(card.ID) == "" {
		return fmt.Errorf("flashcard id must not be empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireTopic(ctx, tx, card.TopicID); err != nil {
		return fmt.Errorf("creating flashcard: %w", err)
	}

	var maxOrder int
	if err := tx.GetContext(ctx, &maxOrder,
		"SELECT COALESCE(MAX(sort_order), 0) FROM flashcards"); err != nil {
		return fmt.Errorf("reading flashcard order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flashcards (id, topic_id, question, answer, ease_factor, interval_days,
			repetitions, next_review, last_review, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cardArgs(card, maxOrder+1)...,
	)
	if err != nil {
		return fmt.Errorf("creating flashcard: %w", err)
	}

	return tx.Commit()
}

// UpdateFlashcard updates a card's content and scheduling state.
func (s *SQLiteStore) UpdateFlashcard(ctx context.Context, card model.Flashcard) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireTopic(ctx, tx, card.TopicID); err != nil {
		return fmt.Errorf("updating flashcard %s: %w", card.ID, err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE flashcards SET
			topic_id = ?, question = ?, answer = ?, ease_factor = ?, interval_days = ?,
			repetitions = ?, next_review = ?, last_review = ?
		WHERE id = ?`,
		card.TopicID, card.Question, card.Answer, card.EaseFactor, card.Interval,
		card.Repetitions, card.NextReview.UTC(), utcPtr(card.LastReview),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("updating flashcard %s: %w", card.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("flashcard %s: %w", card.ID, ErrNotFound)
	}

	return tx.Commit()
}

// DeleteFlashcard removes a single card and its review history.
func (s *SQLiteStore) DeleteFlashcard(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM flashcards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting flashcard %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("flashcard %s: %w", id, ErrNotFound)
	}
	return nil
}
