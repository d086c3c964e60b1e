package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// AppendReview records a rating in the review log.
// If the entry has no ID, a new UUID is generated.
func (s *SQLiteStore) AppendReview(ctx context.Context, entry model.ReviewLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_log (id, card_id, quality, reviewed_at)
		VALUES (?, ?, ?, ?)`,
		entry.ID, entry.CardID, entry.Quality, entry.ReviewedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending review for card %s: %w", entry.CardID, err)
	}
	return nil
}

// GetReviews returns the review history of a card, oldest first.
func (s *SQLiteStore) GetReviews(ctx context.Context, cardID string) ([]model.ReviewLog, error) {
	reviews := []model.ReviewLog{}
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT id, card_id, quality, reviewed_at FROM review_log
		WHERE card_id = ?
		ORDER BY reviewed_at`, cardID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews for card %s: %w", cardID, err)
	}
	return reviews, nil
}
