package model

import (
	"errors"
	"fmt"
	"time"
)

// Initial scheduling values for a new card.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// ErrInvalidFlashcard is returned by Flashcard.Validate.
var ErrInvalidFlashcard = errors.New("model: invalid flashcard")

// Flashcard is a question/answer pair owned by exactly one topic, together
// with its spaced-repetition scheduling state.
type Flashcard struct {
	ID       string `json:"id" db:"id"`
	TopicID  string `json:"topicId" db:"topic_id"`
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer" db:"answer"`

	EaseFactor  float64    `json:"easeFactor" db:"ease_factor"`
	Interval    int        `json:"interval" db:"interval_days"`
	Repetitions int        `json:"repetitions" db:"repetitions"`
	NextReview  time.Time  `json:"nextReview" db:"next_review"`
	LastReview  *time.Time `json:"lastReview,omitempty" db:"last_review"`
}

// NewFlashcard builds a card with default scheduling values. The card is
// due immediately: NextReview is set to now.
func NewFlashcard(id, topicID, question, answer string, now time.Time) Flashcard {
	return Flashcard{
		ID:          id,
		TopicID:     topicID,
		Question:    question,
		Answer:      answer,
		EaseFactor:  InitialEaseFactor,
		Interval:    0,
		Repetitions: 0,
		NextReview:  now,
	}
}

// Validate checks identity and the scheduling ranges.
func (c Flashcard) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidFlashcard)
	case c.TopicID == "":
		return fmt.Errorf("%w: %s has no topic", ErrInvalidFlashcard, c.ID)
	case c.EaseFactor < MinEaseFactor:
		return fmt.Errorf("%w: %s ease factor %.2f below %.1f", ErrInvalidFlashcard, c.ID, c.EaseFactor, MinEaseFactor)
	case c.Interval < 0:
		return fmt.Errorf("%w: %s interval %d", ErrInvalidFlashcard, c.ID, c.Interval)
	case c.Repetitions < 0:
		return fmt.Errorf("%w: %s repetitions %d", ErrInvalidFlashcard, c.ID, c.Repetitions)
	}
	return nil
}
