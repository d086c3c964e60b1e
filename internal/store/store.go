package store

import (
	"context"
	"errors"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// Sentinel errors returned by Store implementations. Check with errors.Is.
var (
	ErrNotFound   = errors.New("store: not found")
	ErrForeignKey = errors.New("store: referenced topic does not exist")
)

// Setting keys used with GetSetting/SetSetting.
const (
	SettingLastVisit = "last-visit"
)

// Store defines the persistence interface for topics, flashcards, the
// review log and small key/value settings.
type Store interface {
	// === Collections ===
	// Loads return an empty slice when nothing has been saved. Saves
	// overwrite the whole collection: rows missing from the slice are
	// deleted. Saving topics removes the flashcards of dropped topics.

	LoadTopics(ctx context.Context) ([]model.Topic, error)
	LoadFlashcards(ctx context.Context) ([]model.Flashcard, error)
	SaveTopics(ctx context.Context, topics []model.Topic) error
	SaveFlashcards(ctx context.Context, cards []model.Flashcard) error

	// === Topic CRUD ===

	CreateTopic(ctx context.Context, topic model.Topic) error
	UpdateTopic(ctx context.Context, topic model.Topic) error
	// DeleteTopic removes a topic and all of its flashcards atomically and
	// returns the number of flashcards removed.
	DeleteTopic(ctx context.Context, id string) (int, error)

	// === Flashcard CRUD ===

	CreateFlashcard(ctx context.Context, card model.Flashcard) error
	UpdateFlashcard(ctx context.Context, card model.Flashcard) error
	DeleteFlashcard(ctx context.Context, id string) error

	// === Review log ===

	AppendReview(ctx context.Context, entry model.ReviewLog) error
	GetReviews(ctx context.Context, cardID string) ([]model.ReviewLog, error)

	// === Settings ===

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}
