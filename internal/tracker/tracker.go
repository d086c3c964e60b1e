// Package tracker owns the user's topics and flashcards: it validates
// edits, keeps the in-memory collections in step with the store and feeds
// quiz decks and dashboard statistics.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/quiz"
	"github.com/nhle/knowledge-tracker/internal/srs"
	"github.com/nhle/knowledge-tracker/internal/stats"
	"github.com/nhle/knowledge-tracker/internal/store"
)

// Sentinel errors. Check with errors.Is.
var (
	ErrUnknownTopic   = errors.New("tracker: unknown topic")
	ErrTopicNotFound  = errors.New("tracker: topic not found")
	ErrCardNotFound   = errors.New("tracker: flashcard not found")
	ErrInvalidMastery = errors.New("tracker: mastery must be between 0 and 100")
	ErrMissingField   = errors.New("tracker: required field is empty")
)

// UnknownTopicTitle is shown for cards whose topic cannot be resolved.
const UnknownTopicTitle = "Unknown"

// Options configures a Tracker. Zero values select the defaults:
// time.Now and random UUIDs.
type Options struct {
	Now   func() time.Time
	NewID func() string

	// ExtraCategories are appended to the built-in category list.
	ExtraCategories []string
}

// TopicInput holds the user-editable fields of a topic.
type TopicInput struct {
	Title       string
	Description string
	Category    string
	Mastery     int
	Notes       *string
}

// Tracker is the application-side owner of the topic and flashcard
// collections. It is safe for use from concurrent tea.Cmd goroutines.
type Tracker struct {
	store      store.Store
	now        func() time.Time
	newID      func() string
	categories []string

	mu     gosync.RWMutex
	topics []model.Topic
	cards  []model.Flashcard
}

// New creates a Tracker backed by s. Call Load before use.
func New(s store.Store, opts Options) *Tracker {
	t := &Tracker{
		store:      s,
		now:        opts.Now,
		newID:      opts.NewID,
		categories: model.MergeCategories(opts.ExtraCategories),
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = func() string { return uuid.New().String() }
	}
	return t
}

// Load reads both collections from the store, replacing any cached state.
func (t *Tracker) Load(ctx context.Context) error {
	topics, err := t.store.LoadTopics(ctx)
	if err != nil {
		return fmt.Errorf("loading topics: %w", err)
	}
	cards, err := t.store.LoadFlashcards(ctx)
	if err != nil {
		return fmt.Errorf("loading flashcards: %w", err)
	}

	t.mu.Lock()
	t.topics = topics
	t.cards = cards
	t.mu.Unlock()
	return nil
}

// Now returns the current time from the injected clock.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Categories returns the category list offered for topics.
func (t *Tracker) Categories() []string {
	return append([]string{}, t.categories...)
}

// Topics returns a copy of the topic collection.
func (t *Tracker) Topics() []model.Topic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Topic{}, t.topics...)
}

// Flashcards returns a copy of the flashcard collection.
func (t *Tracker) Flashcards() []model.Flashcard {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Flashcard{}, t.cards...)
}

// Topic returns the topic with the given id.
func (t *Tracker) Topic(id string) (model.Topic, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.topicIndex(id)
	if i < 0 {
		return model.Topic{}, false
	}
	return t.topics[i], true
}

// TopicTitle returns the title of the topic, or UnknownTopicTitle.
func (t *Tracker) TopicTitle(id string) string {
	if topic, ok := t.Topic(id); ok {
		return topic.Title
	}
	return UnknownTopicTitle
}

// CardsForTopic returns the flashcards owned by topicID in collection order.
func (t *Tracker) CardsForTopic(topicID string) []model.Flashcard {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []model.Flashcard
	for _, c := range t.cards {
		if c.TopicID == topicID {
			out = append(out, c)
		}
	}
	return out
}

// AddTopic validates in and stores a new topic dated now.
func (t *Tracker) AddTopic(ctx context.Context, in TopicInput) (model.Topic, error) {
	if err := validateTopic(&in); err != nil {
		return model.Topic{}, err
	}

	topic := model.Topic{
		ID:          t.newID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		DateAdded:   t.now(),
		Mastery:     in.Mastery,
		Notes:       in.Notes,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.CreateTopic(ctx, topic); err != nil {
		return model.Topic{}, fmt.Errorf("adding topic: %w", err)
	}
	t.topics = append(t.topics, topic)
	return topic, nil
}

// UpdateTopic replaces the editable fields of topic id.
func (t *Tracker) UpdateTopic(ctx context.Context, id string, in TopicInput) (model.Topic, error) {
	if err := validateTopic(&in); err != nil {
		return model.Topic{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.topicIndex(id)
	if i < 0 {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	topic := t.topics[i]
	topic.Title = in.Title
	topic.Description = in.Description
	topic.Category = in.Category
	topic.Mastery = in.Mastery
	topic.Notes = in.Notes

	if err := t.store.UpdateTopic(ctx, topic); err != nil {
		return model.Topic{}, fmt.Errorf("updating topic: %w", err)
	}
	t.topics[i] = topic
	return topic, nil
}

// SetMastery changes only the mastery of topic id.
func (t *Tracker) SetMastery(ctx context.Context, id string, mastery int) (model.Topic, error) {
	topic, ok := t.Topic(id)
	if !ok {
		return model.Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return t.UpdateTopic(ctx, id, TopicInput{
		Title:       topic.Title,
		Description: topic.Description,
		Category:    topic.Category,
		Mastery:     mastery,
		Notes:       topic.Notes,
	})
}

// DeleteTopic removes topic id and every flashcard that references it.
// The store removes both in one transaction; the cached collections are
// updated together under the lock, so no caller observes orphaned cards.
func (t *Tracker) DeleteTopic(ctx context.Context, id string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.topicIndex(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}

	if _, err := t.store.DeleteTopic(ctx, id); err != nil {
		return 0, fmt.Errorf("deleting topic: %w", err)
	}

	t.topics = append(t.topics[:i:i], t.topics[i+1:]...)
	kept := make([]model.Flashcard, 0, len(t.cards))
	removed := 0
	for _, c := range t.cards {
		if c.TopicID == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	t.cards = kept
	return removed, nil
}

// AddFlashcard creates a card for topicID that is due immediately.
// It fails with ErrUnknownTopic when the topic does not exist.
func (t *Tracker) AddFlashcard(ctx context.Context, topicID, question, answer string) (model.Flashcard, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return model.Flashcard{}, fmt.Errorf("%w: question and answer", ErrMissingField)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.topicIndex(topicID) < 0 {
		return model.Flashcard{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}

	card := model.NewFlashcard(t.newID(), topicID, question, answer, t.now())
	if err := t.store.CreateFlashcard(ctx, card); err != nil {
		return model.Flashcard{}, fmt.Errorf("adding flashcard: %w", err)
	}
	t.cards = append(t.cards, card)
	return card, nil
}

// EditFlashcard changes the topic, question and answer of card id. The
// scheduling state is kept.
func (t *Tracker) EditFlashcard(ctx context.Context, id, topicID, question, answer string) (model.Flashcard, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return model.Flashcard{}, fmt.Errorf("%w: question and answer", ErrMissingField)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.cardIndex(id)
	if i < 0 {
		return model.Flashcard{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if t.topicIndex(topicID) < 0 {
		return model.Flashcard{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}

	card := t.cards[i]
	card.TopicID = topicID
	card.Question = question
	card.Answer = answer
	if err := t.store.UpdateFlashcard(ctx, card); err != nil {
		return model.Flashcard{}, fmt.Errorf("editing flashcard: %w", err)
	}
	t.cards[i] = card
	return card, nil
}

// DeleteFlashcard removes card id.
func (t *Tracker) DeleteFlashcard(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.cardIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	if err := t.store.DeleteFlashcard(ctx, id); err != nil {
		return fmt.Errorf("deleting flashcard: %w", err)
	}
	t.cards = append(t.cards[:i:i], t.cards[i+1:]...)
	return nil
}

// Deck returns the quiz deck for mode as of the tracker's clock.
func (t *Tracker) Deck(mode quiz.Mode) []model.Flashcard {
	return quiz.Deck(mode, t.Flashcards(), t.now())
}

// DueCount returns the number of cards due today.
func (t *Tracker) DueCount() int {
	return len(srs.DueCards(t.Flashcards(), t.now()))
}

// RecordReview persists the schedule of a card rated in a quiz together
// with a review log entry. Only the scheduling fields of rated are applied;
// topic, question and answer come from the current card, so edits made
// while a session was open survive. The card must still exist and
// reference a live topic.
func (t *Tracker) RecordReview(ctx context.Context, rated model.Flashcard, q srs.Quality) error {
	if err := q.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.cardIndex(rated.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotFound, rated.ID)
	}
	card := t.cards[i]
	if t.topicIndex(card.TopicID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, card.TopicID)
	}

	card.EaseFactor = rated.EaseFactor
	card.Interval = rated.Interval
	card.Repetitions = rated.Repetitions
	card.NextReview = rated.NextReview
	card.LastReview = rated.LastReview

	if err := t.store.UpdateFlashcard(ctx, card); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	t.cards[i] = card

	reviewedAt := t.now()
	if card.LastReview != nil {
		reviewedAt = *card.LastReview
	}
	entry := model.ReviewLog{
		ID:         t.newID(),
		CardID:     card.ID,
		Quality:    int(q),
		ReviewedAt: reviewedAt,
	}
	if err := t.store.AppendReview(ctx, entry); err != nil {
		return fmt.Errorf("logging review: %w", err)
	}
	return nil
}

// Review rates card id outside a quiz session and persists the result.
func (t *Tracker) Review(ctx context.Context, id string, q srs.Quality) (model.Flashcard, error) {
	t.mu.RLock()
	i := t.cardIndex(id)
	var card model.Flashcard
	if i >= 0 {
		card = t.cards[i]
	}
	t.mu.RUnlock()
	if i < 0 {
		return model.Flashcard{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}

	updated, err := srs.Review(card, q, t.now())
	if err != nil {
		return model.Flashcard{}, err
	}
	if err := t.RecordReview(ctx, updated, q); err != nil {
		return model.Flashcard{}, err
	}
	return updated, nil
}

// Stats summarizes the collections as of the tracker's clock.
func (t *Tracker) Stats() stats.Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return stats.Summarize(t.topics, t.cards, t.now())
}

// CategoryBreakdown counts topics per category.
func (t *Tracker) CategoryBreakdown() []stats.CategoryCount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return stats.ByCategory(t.topics, t.categories)
}

// Replace overwrites both collections, as when restoring a backup. Every
// entity is validated and every card must reference one of topics before
// anything is saved. If a save fails part way, the cached collections are
// reloaded from the store so they match what was committed.
func (t *Tracker) Replace(ctx context.Context, topics []model.Topic, cards []model.Flashcard) error {
	live := make(map[string]bool, len(topics))
	for _, tp := range topics {
		if err := tp.Validate(); err != nil {
			return err
		}
		live[tp.ID] = true
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return err
		}
		if !live[c.TopicID] {
			return fmt.Errorf("%w: card %s references %s", ErrUnknownTopic, c.ID, c.TopicID)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveTopics(ctx, topics); err != nil {
		return t.resync(ctx, fmt.Errorf("saving topics: %w", err))
	}
	if err := t.store.SaveFlashcards(ctx, cards); err != nil {
		return t.resync(ctx, fmt.Errorf("saving flashcards: %w", err))
	}
	t.topics = append([]model.Topic{}, topics...)
	t.cards = append([]model.Flashcard{}, cards...)
	return nil
}

// resync reloads the cached collections after a failed write and returns
// cause, joined with any reload error. Callers hold t.mu.
func (t *Tracker) resync(ctx context.Context, cause error) error {
	topics, err := t.store.LoadTopics(ctx)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("reloading topics: %w", err))
	}
	cards, err := t.store.LoadFlashcards(ctx)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("reloading flashcards: %w", err))
	}
	t.topics = topics
	t.cards = cards
	return cause
}

// TouchLastVisit records now as the last visit and returns the previous
// value, if any.
func (t *Tracker) TouchLastVisit(ctx context.Context) (time.Time, bool, error) {
	prev, ok, err := t.store.GetSetting(ctx, store.SettingLastVisit)
	if err != nil {
		return time.Time{}, false, err
	}
	if err := t.store.SetSetting(ctx, store.SettingLastVisit, t.now().UTC().Format(time.RFC3339)); err != nil {
		return time.Time{}, false, err
	}
	if !ok {
		return time.Time{}, false, nil
	}
	last, err := time.Parse(time.RFC3339, prev)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing last visit %q: %w", prev, err)
	}
	return last, true, nil
}

// validateTopic trims text fields, applies the default category and
// checks required fields and the mastery range.
func validateTopic(in *TopicInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if in.Category == "" {
		in.Category = model.DefaultCategory
	}
	if in.Mastery < model.MasteryMin || in.Mastery > model.MasteryMax {
		return fmt.Errorf("%w: got %d", ErrInvalidMastery, in.Mastery)
	}
	if in.Notes != nil {
		n := strings.TrimSpace(*in.Notes)
		if n == "" {
			in.Notes = nil
		} else {
			in.Notes = &n
		}
	}
	return nil
}

func (t *Tracker) topicIndex(id string) int {
	for i, tp := range t.topics {
		if tp.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) cardIndex(id string) int {
	for i, c := range t.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
