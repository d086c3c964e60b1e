package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/quiz"
	"github.com/nhle/knowledge-tracker/internal/srs"
	"github.com/nhle/knowledge-tracker/internal/store"
	"github.com/nhle/knowledge-tracker/internal/testutil"
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

var t0 = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*tracker.Tracker, *store.MemoryStore, *testutil.Clock) {
	t.Helper()
	s := store.NewMemoryStore()
	clock := &testutil.Clock{T: t0}
	tr := tracker.New(s, tracker.Options{Now: clock.Now, NewID: testutil.SeqIDs("id")})
	require.NoError(t, tr.Load(context.Background()))
	return tr, s, clock
}

func TestAddTopicDefaults(t *testing.T) {
	tr, s, _ := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "  Backprop  ", Mastery: 40})
	require.NoError(t, err)

	assert.Equal(t, "id-1", topic.ID)
	assert.Equal(t, "Backprop", topic.Title)
	assert.Equal(t, model.DefaultCategory, topic.Category)
	assert.Equal(t, t0, topic.DateAdded)
	assert.Nil(t, topic.Notes)

	stored, err := s.LoadTopics(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, topic, stored[0])
}

func TestAddTopicValidation(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "", Mastery: 10})
	assert.ErrorIs(t, err, tracker.ErrMissingField)

	_, err = tr.AddTopic(ctx, tracker.TopicInput{Title: "x", Mastery: 101})
	assert.ErrorIs(t, err, tracker.ErrInvalidMastery)

	_, err = tr.AddTopic(ctx, tracker.TopicInput{Title: "x", Mastery: -1})
	assert.ErrorIs(t, err, tracker.ErrInvalidMastery)

	assert.Empty(t, tr.Topics())
}

func TestUpdateTopicAndMastery(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "CNNs", Category: "Computer Vision", Mastery: 10})
	require.NoError(t, err)

	clock.AddDays(3)
	notes := "read the paper"
	updated, err := tr.UpdateTopic(ctx, topic.ID, tracker.TopicInput{
		Title:    "Convolutions",
		Category: "Deep Learning",
		Mastery:  55,
		Notes:    &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Convolutions", updated.Title)
	assert.Equal(t, t0, updated.DateAdded)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	m, err := tr.SetMastery(ctx, topic.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, m.Mastery)
	assert.Equal(t, "Convolutions", m.Title)

	_, err = tr.SetMastery(ctx, topic.ID, 150)
	assert.ErrorIs(t, err, tracker.ErrInvalidMastery)

	_, err = tr.SetMastery(ctx, "missing", 10)
	assert.ErrorIs(t, err, tracker.ErrTopicNotFound)
}

func TestAddFlashcardRequiresTopic(t *testing.T) {
	tr, s, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.AddFlashcard(ctx, "nope", "Q", "A")
	assert.ErrorIs(t, err, tracker.ErrUnknownTopic)

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Math"})
	require.NoError(t, err)

	_, err = tr.AddFlashcard(ctx, topic.ID, "  ", "A")
	assert.ErrorIs(t, err, tracker.ErrMissingField)

	card, err := tr.AddFlashcard(ctx, topic.ID, "What is 2+2?", "4")
	require.NoError(t, err)
	assert.Equal(t, model.InitialEaseFactor, card.EaseFactor)
	assert.Equal(t, 0, card.Interval)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, t0, card.NextReview)
	assert.Nil(t, card.LastReview)

	stored, err := s.LoadFlashcards(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, card.ID, stored[0].ID)
}

func TestEditFlashcardKeepsSchedule(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	a, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "A"})
	require.NoError(t, err)
	b, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "B"})
	require.NoError(t, err)
	card, err := tr.AddFlashcard(ctx, a.ID, "Q", "A")
	require.NoError(t, err)

	reviewed, err := tr.Review(ctx, card.ID, srs.QualityPerfect)
	require.NoError(t, err)

	edited, err := tr.EditFlashcard(ctx, card.ID, b.ID, "Q2", "A2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, edited.TopicID)
	assert.Equal(t, "Q2", edited.Question)
	assert.Equal(t, reviewed.Interval, edited.Interval)
	assert.Equal(t, reviewed.EaseFactor, edited.EaseFactor)

	_, err = tr.EditFlashcard(ctx, card.ID, "ghost", "Q", "A")
	assert.ErrorIs(t, err, tracker.ErrUnknownTopic)

	_, err = tr.EditFlashcard(ctx, "ghost", b.ID, "Q", "A")
	assert.ErrorIs(t, err, tracker.ErrCardNotFound)
}

func TestDeleteTopicCascades(t *testing.T) {
	tr, s, _ := newTracker(t)
	ctx := context.Background()

	keep, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Keep"})
	require.NoError(t, err)
	drop, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Drop"})
	require.NoError(t, err)

	_, err = tr.AddFlashcard(ctx, drop.ID, "q1", "a1")
	require.NoError(t, err)
	kept, err := tr.AddFlashcard(ctx, keep.ID, "q2", "a2")
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, drop.ID, "q3", "a3")
	require.NoError(t, err)

	removed, err := tr.DeleteTopic(ctx, drop.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.Len(t, tr.Topics(), 1)
	cards := tr.Flashcards()
	require.Len(t, cards, 1)
	assert.Equal(t, kept.ID, cards[0].ID)

	stored, err := s.LoadFlashcards(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, kept.ID, stored[0].ID)

	_, err = tr.DeleteTopic(ctx, drop.ID)
	assert.ErrorIs(t, err, tracker.ErrTopicNotFound)
}

func TestDeleteFlashcard(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "T"})
	require.NoError(t, err)
	card, err := tr.AddFlashcard(ctx, topic.ID, "q", "a")
	require.NoError(t, err)

	require.NoError(t, tr.DeleteFlashcard(ctx, card.ID))
	assert.Empty(t, tr.Flashcards())
	assert.ErrorIs(t, tr.DeleteFlashcard(ctx, card.ID), tracker.ErrCardNotFound)
}

func TestTopicTitleFallback(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Transformers"})
	require.NoError(t, err)

	assert.Equal(t, "Transformers", tr.TopicTitle(topic.ID))
	assert.Equal(t, tracker.UnknownTopicTitle, tr.TopicTitle("missing"))
}

func TestQuizSessionPersistsReviews(t *testing.T) {
	tr, s, clock := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "NLP"})
	require.NoError(t, err)
	c1, err := tr.AddFlashcard(ctx, topic.ID, "q1", "a1")
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, topic.ID, "q2", "a2")
	require.NoError(t, err)

	sess := quiz.NewSession(quiz.ModeDue)
	require.NoError(t, sess.Start(tr.Deck(quiz.ModeDue)))
	assert.Equal(t, 2, sess.Len())

	sess.Flip()
	updated, err := sess.Rate(srs.QualityPerfect, clock.Now())
	require.NoError(t, err)
	require.NoError(t, tr.RecordReview(ctx, updated, srs.QualityPerfect))

	stored, err := s.LoadFlashcards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored[0].Interval)
	assert.Equal(t, 1, stored[0].Repetitions)
	assert.Equal(t, t0.AddDate(0, 0, 1), stored[0].NextReview)

	log, err := s.GetReviews(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, int(srs.QualityPerfect), log[0].Quality)
	assert.Equal(t, t0, log[0].ReviewedAt)

	// Only the unrated card is still due today.
	assert.Equal(t, 1, tr.DueCount())
	assert.Len(t, tr.Deck(quiz.ModeAll), 2)

	clock.AddDays(1)
	assert.Equal(t, 2, tr.DueCount())
}

func TestRecordReviewRejectsDeletedTopic(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	topic, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "T"})
	require.NoError(t, err)
	card, err := tr.AddFlashcard(ctx, topic.ID, "q", "a")
	require.NoError(t, err)

	updated, err := srs.Review(card, srs.QualityHesitant, clock.Now())
	require.NoError(t, err)

	_, err = tr.DeleteTopic(ctx, topic.ID)
	require.NoError(t, err)

	err = tr.RecordReview(ctx, updated, srs.QualityHesitant)
	assert.ErrorIs(t, err, tracker.ErrCardNotFound)

	err = tr.RecordReview(ctx, updated, srs.Quality(9))
	assert.ErrorIs(t, err, srs.ErrInvalidQuality)
}

func TestRecordReviewKeepsEditsMadeDuringSession(t *testing.T) {
	tr, s, clock := newTracker(t)
	ctx := context.Background()

	a, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "A"})
	require.NoError(t, err)
	b, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "B"})
	require.NoError(t, err)
	card, err := tr.AddFlashcard(ctx, a.ID, "old q", "old a")
	require.NoError(t, err)

	sess := quiz.NewSession(quiz.ModeDue)
	require.NoError(t, sess.Start(tr.Deck(quiz.ModeDue)))

	_, err = tr.EditFlashcard(ctx, card.ID, b.ID, "new q", "new a")
	require.NoError(t, err)

	sess.Flip()
	rated, err := sess.Rate(srs.QualityHesitant, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, "old q", rated.Question)
	require.NoError(t, tr.RecordReview(ctx, rated, srs.QualityHesitant))

	stored, err := s.LoadFlashcards(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, b.ID, stored[0].TopicID)
	assert.Equal(t, "new q", stored[0].Question)
	assert.Equal(t, "new a", stored[0].Answer)
	assert.Equal(t, 1, stored[0].Repetitions)
	assert.Equal(t, t0.AddDate(0, 0, 1), stored[0].NextReview)
	assert.Equal(t, stored, tr.Flashcards())
}

func TestRecordReviewChecksCurrentTopic(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	a, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "A"})
	require.NoError(t, err)
	b, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "B"})
	require.NoError(t, err)
	card, err := tr.AddFlashcard(ctx, a.ID, "q", "a")
	require.NoError(t, err)

	rated, err := srs.Review(card, srs.QualityPerfect, clock.Now())
	require.NoError(t, err)

	// A stale topic on the rated copy does not matter once the card moved.
	_, err = tr.EditFlashcard(ctx, card.ID, b.ID, "q", "a")
	require.NoError(t, err)
	_, err = tr.DeleteTopic(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, tr.RecordReview(ctx, rated, srs.QualityPerfect))
	assert.Equal(t, b.ID, tr.Flashcards()[0].TopicID)
}

func TestStats(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	a, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "A", Category: "Math", Mastery: 50})
	require.NoError(t, err)
	_, err = tr.AddTopic(ctx, tracker.TopicInput{Title: "B", Category: "Math", Mastery: 75})
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, a.ID, "q", "a")
	require.NoError(t, err)

	sum := tr.Stats()
	assert.Equal(t, 2, sum.TotalTopics)
	assert.Equal(t, 1, sum.TotalCards)
	assert.Equal(t, 1, sum.CardsToReview)
	assert.Equal(t, 63, sum.AverageMastery)
	assert.Equal(t, 0, sum.StreakDays)

	var math int
	for _, c := range tr.CategoryBreakdown() {
		if c.Category == "Math" {
			math = c.Topics
		}
	}
	assert.Equal(t, 2, math)
}

func TestReplace(t *testing.T) {
	tr, s, _ := newTracker(t)
	ctx := context.Background()

	_, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Old"})
	require.NoError(t, err)

	topics := []model.Topic{{ID: "t1", Title: "New", Category: "Other", DateAdded: t0, Mastery: 20}}
	cards := []model.Flashcard{model.NewFlashcard("c1", "t1", "q", "a", t0)}
	require.NoError(t, tr.Replace(ctx, topics, cards))

	assert.Equal(t, topics, tr.Topics())
	assert.Equal(t, cards, tr.Flashcards())

	stored, err := s.LoadTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, topics, stored)

	bad := []model.Flashcard{model.NewFlashcard("c2", "ghost", "q", "a", t0)}
	assert.ErrorIs(t, tr.Replace(ctx, topics, bad), tracker.ErrUnknownTopic)
	assert.Equal(t, cards, tr.Flashcards())
}

func TestTouchLastVisit(t *testing.T) {
	tr, _, clock := newTracker(t)
	ctx := context.Background()

	_, ok, err := tr.TouchLastVisit(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.AddDays(2)
	prev, ok, err := tr.TouchLastVisit(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, prev.Equal(t0))
}

func TestLoadFromSQLite(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	clock := &testutil.Clock{T: t0}

	first := tracker.New(s, tracker.Options{Now: clock.Now, NewID: testutil.SeqIDs("a")})
	require.NoError(t, first.Load(ctx))
	topic, err := first.AddTopic(ctx, tracker.TopicInput{Title: "SQL"})
	require.NoError(t, err)
	_, err = first.AddFlashcard(ctx, topic.ID, "q", "a")
	require.NoError(t, err)

	second := tracker.New(s, tracker.Options{Now: clock.Now})
	require.NoError(t, second.Load(ctx))
	assert.Len(t, second.Topics(), 1)
	assert.Len(t, second.CardsForTopic(topic.ID), 1)
}

func TestReplaceRejectsOutOfRangeEntities(t *testing.T) {
	tr, s, _ := newTracker(t)
	ctx := context.Background()

	old, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Old"})
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, old.ID, "q", "a")
	require.NoError(t, err)

	topics := []model.Topic{{ID: "t1", Title: "New", Category: "Other", DateAdded: t0}}
	good := model.NewFlashcard("c1", "t1", "q", "a", t0)

	tests := []struct {
		name   string
		topics []model.Topic
		card   func(c *model.Flashcard)
		want   error
	}{
		{"negative interval", topics, func(c *model.Flashcard) { c.Interval = -3 }, model.ErrInvalidFlashcard},
		{"negative repetitions", topics, func(c *model.Flashcard) { c.Repetitions = -1 }, model.ErrInvalidFlashcard},
		{"ease factor below floor", topics, func(c *model.Flashcard) { c.EaseFactor = 1.1 }, model.ErrInvalidFlashcard},
		{"mastery above range", []model.Topic{{ID: "t1", Title: "New", Mastery: 150}}, func(*model.Flashcard) {}, model.ErrInvalidTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.card(&c)
			assert.ErrorIs(t, tr.Replace(ctx, tt.topics, []model.Flashcard{c}), tt.want)

			stored, err := s.LoadTopics(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Topic{old}, stored)
			assert.Equal(t, stored, tr.Topics())
			assert.Len(t, tr.Flashcards(), 1)
		})
	}
}

// failingCardStore commits topics but fails every bulk card save.
type failingCardStore struct {
	*store.MemoryStore
}

func (f failingCardStore) SaveFlashcards(context.Context, []model.Flashcard) error {
	return errors.New("disk full")
}

func TestReplaceReloadsAfterPartialSave(t *testing.T) {
	s := failingCardStore{store.NewMemoryStore()}
	tr := tracker.New(s, tracker.Options{Now: (&testutil.Clock{T: t0}).Now, NewID: testutil.SeqIDs("id")})
	ctx := context.Background()
	require.NoError(t, tr.Load(ctx))

	old, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Old"})
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, old.ID, "q", "a")
	require.NoError(t, err)

	topics := []model.Topic{{ID: "t1", Title: "New", Category: "Other", DateAdded: t0}}
	cards := []model.Flashcard{model.NewFlashcard("c1", "t1", "q", "a", t0)}
	assert.ErrorContains(t, tr.Replace(ctx, topics, cards), "disk full")

	storedTopics, err := s.LoadTopics(ctx)
	require.NoError(t, err)
	storedCards, err := s.LoadFlashcards(ctx)
	require.NoError(t, err)
	assert.Equal(t, storedTopics, tr.Topics())
	assert.Equal(t, storedCards, tr.Flashcards())

	// The cache no longer points at the replaced topic.
	_, err = tr.AddFlashcard(ctx, old.ID, "q2", "a2")
	assert.ErrorIs(t, err, tracker.ErrUnknownTopic)
	_, err = tr.AddFlashcard(ctx, "t1", "q2", "a2")
	assert.NoError(t, err)
}
