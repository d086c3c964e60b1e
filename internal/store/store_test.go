package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/store"
	"github.com/nhle/knowledge-tracker/internal/testutil"
)

var t0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

// implementations runs fn against every Store implementation.
func implementations(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, testutil.NewTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, store.NewMemoryStore()) })
}

func strPtr(s string) *string { return &s }

func newTopic(id string) model.Topic {
	return model.Topic{
		ID:          id,
		Title:       "Topic " + id,
		Description: "about " + id,
		Category:    "Math",
		DateAdded:   t0,
		Mastery:     40,
	}
}

func newCard(id, topicID string) model.Flashcard {
	return model.NewFlashcard(id, topicID, "Q "+id, "A "+id, t0)
}

func cardIDs(cards []model.Flashcard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestLoadEmpty(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		topics, err := s.LoadTopics(ctx)
		require.NoError(t, err)
		assert.NotNil(t, topics)
		assert.Empty(t, topics)

		cards, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)
		assert.NotNil(t, cards)
		assert.Empty(t, cards)
	})
}

func TestTopicRoundTrip(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		withNotes := newTopic("b")
		withNotes.Notes = strPtr("remember the chain rule")

		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
		require.NoError(t, s.CreateTopic(ctx, withNotes))

		topics, err := s.LoadTopics(ctx)
		require.NoError(t, err)
		require.Len(t, topics, 2)
		assert.Equal(t, "a", topics[0].ID)
		assert.Nil(t, topics[0].Notes)
		assert.True(t, topics[0].DateAdded.Equal(t0))
		require.NotNil(t, topics[1].Notes)
		assert.Equal(t, "remember the chain rule", *topics[1].Notes)
		assert.Equal(t, 40, topics[1].Mastery)
	})
}

func TestUpdateTopic(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))

		edited := newTopic("a")
		edited.Title = "Linear Algebra"
		edited.Mastery = 90
		edited.DateAdded = t0.AddDate(1, 0, 0)
		require.NoError(t, s.UpdateTopic(ctx, edited))

		topics, err := s.LoadTopics(ctx)
		require.NoError(t, err)
		require.Len(t, topics, 1)
		assert.Equal(t, "Linear Algebra", topics[0].Title)
		assert.Equal(t, 90, topics[0].Mastery)
		assert.True(t, topics[0].DateAdded.Equal(t0), "date added is immutable")

		err = s.UpdateTopic(ctx, newTopic("missing"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestFlashcardRequiresTopic(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		err := s.CreateFlashcard(ctx, newCard("c1", "ghost"))
		require.ErrorIs(t, err, store.ErrForeignKey)

		err = s.SaveFlashcards(ctx, []model.Flashcard{newCard("c1", "ghost")})
		require.ErrorIs(t, err, store.ErrForeignKey)

		cards, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}

func TestFlashcardRoundTrip(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("c1", "a")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("c2", "a")))

		reviewed := t0.Add(2 * time.Hour)
		c := newCard("c1", "a")
		c.EaseFactor = 2.6
		c.Interval = 6
		c.Repetitions = 2
		c.NextReview = reviewed.AddDate(0, 0, 6)
		c.LastReview = &reviewed
		require.NoError(t, s.UpdateFlashcard(ctx, c))

		cards, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"c1", "c2"}, cardIDs(cards))
		got := cards[0]
		assert.InDelta(t, 2.6, got.EaseFactor, 1e-9)
		assert.Equal(t, 6, got.Interval)
		assert.Equal(t, 2, got.Repetitions)
		assert.True(t, got.NextReview.Equal(c.NextReview))
		require.NotNil(t, got.LastReview)
		assert.True(t, got.LastReview.Equal(reviewed))
		assert.Nil(t, cards[1].LastReview)

		err = s.UpdateFlashcard(ctx, newCard("nope", "a"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteTopicCascades(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
		require.NoError(t, s.CreateTopic(ctx, newTopic("b")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("a1", "a")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("b1", "b")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("a2", "a")))
		require.NoError(t, s.AppendReview(ctx, model.ReviewLog{CardID: "a1", Quality: 4, ReviewedAt: t0}))

		before, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)

		removed, err := s.DeleteTopic(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		topics, err := s.LoadTopics(ctx)
		require.NoError(t, err)
		require.Len(t, topics, 1)
		assert.Equal(t, "b", topics[0].ID)

		cards, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, before[1], cards[0])

		reviews, err := s.GetReviews(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, reviews)

		_, err = s.DeleteTopic(ctx, "a")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSaveCollectionsOverwrite(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveTopics(ctx, []model.Topic{newTopic("a"), newTopic("b"), newTopic("c")}))
		require.NoError(t, s.SaveFlashcards(ctx, []model.Flashcard{
			newCard("a1", "a"), newCard("b1", "b"), newCard("c1", "c"),
		}))

		// Dropping topic b removes its card; order follows the new slice.
		require.NoError(t, s.SaveTopics(ctx, []model.Topic{newTopic("c"), newTopic("a")}))

		topics, err := s.LoadTopics(ctx)
		require.NoError(t, err)
		require.Len(t, topics, 2)
		assert.Equal(t, "c", topics[0].ID)
		assert.Equal(t, "a", topics[1].ID)

		cards, err := s.LoadFlashcards(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "c1"}, cardIDs(cards))

		require.NoError(t, s.SaveFlashcards(ctx, []model.Flashcard{newCard("c1", "c")}))
		cards, err = s.LoadFlashcards(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, cardIDs(cards))

		require.NoError(t, s.SaveFlashcards(ctx, nil))
		cards, err = s.LoadFlashcards(ctx)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}

func TestDeleteFlashcard(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("a1", "a")))

		require.NoError(t, s.DeleteFlashcard(ctx, "a1"))
		assert.ErrorIs(t, s.DeleteFlashcard(ctx, "a1"), store.ErrNotFound)
	})
}

func TestReviewLog(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
		require.NoError(t, s.CreateFlashcard(ctx, newCard("a1", "a")))

		require.NoError(t, s.AppendReview(ctx, model.ReviewLog{CardID: "a1", Quality: 2, ReviewedAt: t0.Add(time.Hour)}))
		require.NoError(t, s.AppendReview(ctx, model.ReviewLog{CardID: "a1", Quality: 5, ReviewedAt: t0}))

		reviews, err := s.GetReviews(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, 5, reviews[0].Quality)
		assert.Equal(t, 2, reviews[1].Quality)
		assert.NotEmpty(t, reviews[0].ID)
	})
}

func TestSettings(t *testing.T) {
	implementations(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		_, ok, err := s.GetSetting(ctx, store.SettingLastVisit)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetSetting(ctx, store.SettingLastVisit, "2024-01-10"))
		require.NoError(t, s.SetSetting(ctx, store.SettingLastVisit, "2024-01-11"))

		v, ok, err := s.GetSetting(ctx, store.SettingLastVisit)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2024-01-11", v)
	})
}

func TestSchemaVersion(t *testing.T) {
	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestReopenKeepsData(t *testing.T) {
	path := t.TempDir() + "/nested/learntrack.db"
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateTopic(ctx, newTopic("a")))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	topics, err := s.LoadTopics(ctx)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}
