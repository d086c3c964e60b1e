package importer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/knowledge-tracker/internal/importer"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/store"
	"github.com/nhle/knowledge-tracker/internal/testutil"
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	clock := &testutil.Clock{T: t0}
	tr := tracker.New(store.NewMemoryStore(), tracker.Options{
		Now:   clock.Now,
		NewID: testutil.SeqIDs("id"),
	})
	require.NoError(t, tr.Load(context.Background()))
	return tr
}

const cardsCSV = `Topic,Question,Answer,Category
Linear Algebra,What is a basis?,A linearly independent spanning set,Math
linear algebra,What is rank?,Dimension of the column space,Math
Tokenizers,What is BPE?,Byte pair encoding,NLP
,,,
Tokenizers,,missing question,
`

func TestImportCSV(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	res, err := importer.ImportCSV(ctx, tr, strings.NewReader(cardsCSV), importer.DefaultSheetConfig())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, 2, res.TopicsCreated)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 1)

	topics := tr.Topics()
	require.Len(t, topics, 2)
	assert.Equal(t, "Linear Algebra", topics[0].Title)
	assert.Equal(t, "Math", topics[0].Category)
	assert.Len(t, tr.CardsForTopic(topics[0].ID), 2)
	assert.Len(t, tr.CardsForTopic(topics[1].ID), 1)
}

func TestImportUpdatesExistingAnswer(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	cfg := importer.DefaultSheetConfig()

	_, err := importer.ImportCSV(ctx, tr, strings.NewReader(cardsCSV), cfg)
	require.NoError(t, err)

	again := "Topic,Question,Answer\nTokenizers,what is bpe?,Byte-pair encoding merges frequent pairs\nTokenizers,What is BPE?,Byte-pair encoding merges frequent pairs\n"
	res, err := importer.ImportCSV(ctx, tr, strings.NewReader(again), cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, res.TopicsCreated)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	var bpe model.Flashcard
	for _, c := range tr.Flashcards() {
		if c.Question == "What is BPE?" {
			bpe = c
		}
	}
	assert.Equal(t, "Byte-pair encoding merges frequent pairs", bpe.Answer)
}

func TestSheetRoundTrip(t *testing.T) {
	src := newTracker(t)
	ctx := context.Background()

	topic, err := src.AddTopic(ctx, tracker.TopicInput{Title: "Optimizers", Category: "Deep Learning"})
	require.NoError(t, err)
	_, err = src.AddFlashcard(ctx, topic.ID, "What does Adam track?", "First and second moments")
	require.NoError(t, err)
	_, err = src.AddFlashcard(ctx, topic.ID, "SGD with momentum?", "Velocity term")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cards.xlsx")
	require.NoError(t, importer.ExportSheet(path, src.Topics(), src.Flashcards()))

	dst := newTracker(t)
	res, err := importer.ImportFile(ctx, dst, path, importer.DefaultSheetConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.TopicsCreated)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Errors)

	topics := dst.Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, "Optimizers", topics[0].Title)
	assert.Equal(t, "Deep Learning", topics[0].Category)

	cards := dst.CardsForTopic(topics[0].ID)
	require.Len(t, cards, 2)
	assert.Equal(t, "What does Adam track?", cards[0].Question)
	assert.Equal(t, "First and second moments", cards[0].Answer)
}

func TestBackupRoundTrip(t *testing.T) {
	src := newTracker(t)
	ctx := context.Background()

	notes := "see chapter 3"
	topic, err := src.AddTopic(ctx, tracker.TopicInput{Title: "Attention", Category: "NLP", Mastery: 70, Notes: &notes})
	require.NoError(t, err)
	card, err := src.AddFlashcard(ctx, topic.ID, "Q", "A")
	require.NoError(t, err)
	_, err = src.Review(ctx, card.ID, 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, importer.WriteBackup(&buf, src.Topics(), src.Flashcards()))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, importer.TopicsKey)
	assert.Contains(t, raw, importer.FlashcardsKey)

	dst := newTracker(t)
	b, err := importer.Restore(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Len(t, b.Topics, 1)

	got := dst.Topics()
	require.Len(t, got, 1)
	assert.Equal(t, "Attention", got[0].Title)
	require.NotNil(t, got[0].Notes)
	assert.Equal(t, notes, *got[0].Notes)
	assert.True(t, got[0].DateAdded.Equal(t0))

	cards := dst.Flashcards()
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].Repetitions)
	assert.Equal(t, 1, cards[0].Interval)
	assert.True(t, cards[0].NextReview.Equal(t0.AddDate(0, 0, 1)))
	require.NotNil(t, cards[0].LastReview)
}

func TestReadBackupDefaults(t *testing.T) {
	doc := `{"ai-journey-topics":[{"id":"t1","title":"X","dateAdded":"2024-01-01T00:00:00Z","mastery":10}],
"ai-journey-flashcards":[{"id":"c1","topicId":"t1","question":"q","answer":"a","nextReview":"2024-01-01T00:00:00Z"}]}`

	b, err := importer.ReadBackup(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, b.Topics, 1)
	assert.Equal(t, model.DefaultCategory, b.Topics[0].Category)
	require.Len(t, b.Flashcards, 1)
	assert.Equal(t, model.InitialEaseFactor, b.Flashcards[0].EaseFactor)

	empty, err := importer.ReadBackup(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Empty(t, empty.Topics)
	assert.NotNil(t, empty.Flashcards)
}

func TestRestoreRejectsDanglingCards(t *testing.T) {
	tr := newTracker(t)
	doc := `{"ai-journey-topics":[],"ai-journey-flashcards":[{"id":"c1","topicId":"gone","question":"q","answer":"a","easeFactor":2.5,"nextReview":"2024-01-01T00:00:00Z"}]}`

	_, err := importer.Restore(context.Background(), tr, strings.NewReader(doc))
	assert.ErrorIs(t, err, tracker.ErrUnknownTopic)
	assert.Empty(t, tr.Flashcards())
}

func TestRestoreRejectsOutOfRangeCard(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	old, err := tr.AddTopic(ctx, tracker.TopicInput{Title: "Old"})
	require.NoError(t, err)
	_, err = tr.AddFlashcard(ctx, old.ID, "q", "a")
	require.NoError(t, err)

	doc := `{"ai-journey-topics":[{"id":"t1","title":"New","dateAdded":"2024-01-01T00:00:00Z","mastery":10}],
"ai-journey-flashcards":[{"id":"c1","topicId":"t1","question":"q","answer":"a","easeFactor":2.5,"interval":-3,"nextReview":"2024-01-01T00:00:00Z"}]}`

	_, err = importer.Restore(ctx, tr, strings.NewReader(doc))
	assert.ErrorIs(t, err, model.ErrInvalidFlashcard)

	topics := tr.Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, "Old", topics[0].Title)
	_, err = tr.AddFlashcard(ctx, old.ID, "q2", "a2")
	assert.NoError(t, err)
}

func TestReadBackupRejectsMasteryOutOfRange(t *testing.T) {
	doc := `{"ai-journey-topics":[{"id":"t1","title":"X","dateAdded":"2024-01-01T00:00:00Z","mastery":120}]}`

	_, err := importer.ReadBackup(strings.NewReader(doc))
	assert.ErrorIs(t, err, model.ErrInvalidTopic)
}
