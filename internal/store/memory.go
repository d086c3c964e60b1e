package store

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"

	"github.com/google/uuid"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// MemoryStore is an in-memory Store used in tests and for dry runs. It
// enforces the same referential rules as SQLiteStore.
type MemoryStore struct {
	mu       gosync.Mutex
	topics   []model.Topic
	cards    []model.Flashcard
	reviews  []model.ReviewLog
	settings map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: make(map[string]string)}
}

// LoadTopics returns a copy of the topic collection.
func (m *MemoryStore) LoadTopics(_ context.Context) ([]model.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Topic{}, m.topics...), nil
}

// LoadFlashcards returns a copy of the flashcard collection.
func (m *MemoryStore) LoadFlashcards(_ context.Context) ([]model.Flashcard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Flashcard{}, m.cards...), nil
}

// SaveTopics replaces the topic collection and drops orphaned flashcards.
func (m *MemoryStore) SaveTopics(_ context.Context, topics []model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topics = append([]model.Topic{}, topics...)
	live := m.topicSet()
	kept := m.cards[:0:0]
	for _, c := range m.cards {
		if live[c.TopicID] {
			kept = append(kept, c)
		}
	}
	m.setCards(kept)
	return nil
}

// SaveFlashcards replaces the flashcard collection. Every card must
// reference a stored topic.
func (m *MemoryStore) SaveFlashcards(_ context.Context, cards []model.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.topicSet()
	for _, c := range cards {
		if !live[c.TopicID] {
			return fmt.Errorf("saving flashcard %s: topic %s: %w", c.ID, c.TopicID, ErrForeignKey)
		}
	}
	m.setCards(append([]model.Flashcard{}, cards...))
	return nil
}

// CreateTopic appends a topic.
func (m *MemoryStore) CreateTopic(_ context.Context, topic model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.topicIndex(topic.ID) >= 0 {
		return fmt.Errorf("creating topic: duplicate id %s", topic.ID)
	}
	m.topics = append(m.topics, topic)
	return nil
}

// UpdateTopic replaces the editable fields of a stored topic.
func (m *MemoryStore) UpdateTopic(_ context.Context, topic model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.topicIndex(topic.ID)
	if i < 0 {
		return fmt.Errorf("topic %s: %w", topic.ID, ErrNotFound)
	}
	topic.DateAdded = m.topics[i].DateAdded
	m.topics[i] = topic
	return nil
}

// DeleteTopic removes a topic and its flashcards.
func (m *MemoryStore) DeleteTopic(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.topicIndex(id)
	if i < 0 {
		return 0, fmt.Errorf("topic %s: %w", id, ErrNotFound)
	}
	m.topics = append(m.topics[:i:i], m.topics[i+1:]...)

	var kept []model.Flashcard
	removed := 0
	for _, c := range m.cards {
		if c.TopicID == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.setCards(kept)
	return removed, nil
}

// CreateFlashcard appends a card whose topic must exist.
func (m *MemoryStore) CreateFlashcard(_ context.Context, card model.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.topicIndex(card.TopicID) < 0 {
		return fmt.Errorf("creating flashcard: topic %s: %w", card.TopicID, ErrForeignKey)
	}
	if m.cardIndex(card.ID) >= 0 {
		return fmt.Errorf("creating flashcard: duplicate id %s", card.ID)
	}
	m.cards = append(m.cards, card)
	return nil
}

// UpdateFlashcard replaces a stored card.
func (m *MemoryStore) UpdateFlashcard(_ context.Context, card model.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.topicIndex(card.TopicID) < 0 {
		return fmt.Errorf("updating flashcard %s: topic %s: %w", card.ID, card.TopicID, ErrForeignKey)
	}
	i := m.cardIndex(card.ID)
	if i < 0 {
		return fmt.Errorf("flashcard %s: %w", card.ID, ErrNotFound)
	}
	m.cards[i] = card
	return nil
}

// DeleteFlashcard removes a card and its review history.
func (m *MemoryStore) DeleteFlashcard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.cardIndex(id)
	if i < 0 {
		return fmt.Errorf("flashcard %s: %w", id, ErrNotFound)
	}
	kept := append(append([]model.Flashcard{}, m.cards[:i]...), m.cards[i+1:]...)
	m.setCards(kept)
	return nil
}

// AppendReview records a rating. If the entry has no ID, a new UUID is
// generated.
func (m *MemoryStore) AppendReview(_ context.Context, entry model.ReviewLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cardIndex(entry.CardID) < 0 {
		return fmt.Errorf("appending review: flashcard %s: %w", entry.CardID, ErrNotFound)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	m.reviews = append(m.reviews, entry)
	return nil
}

// GetReviews returns the review history of a card, oldest first.
func (m *MemoryStore) GetReviews(_ context.Context, cardID string) ([]model.ReviewLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.ReviewLog{}
	for _, r := range m.reviews {
		if r.CardID == cardID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewedAt.Before(out[j].ReviewedAt)
	})
	return out, nil
}

// GetSetting returns the value stored under key.
func (m *MemoryStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

// SetSetting stores value under key.
func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// setCards replaces the card collection and drops reviews of removed cards.
func (m *MemoryStore) setCards(cards []model.Flashcard) {
	m.cards = cards
	live := make(map[string]bool, len(cards))
	for _, c := range cards {
		live[c.ID] = true
	}
	var kept []model.ReviewLog
	for _, r := range m.reviews {
		if live[r.CardID] {
			kept = append(kept, r)
		}
	}
	m.reviews = kept
}

func (m *MemoryStore) topicSet() map[string]bool {
	set := make(map[string]bool, len(m.topics))
	for _, t := range m.topics {
		set[t.ID] = true
	}
	return set
}

func (m *MemoryStore) topicIndex(id string) int {
	for i, t := range m.topics {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) cardIndex(id string) int {
	for i, c := range m.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
