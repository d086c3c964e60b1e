package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/knowledge-tracker/internal/model"
)

func dueAt(id string, at time.Time) model.Flashcard {
	c := model.NewFlashcard(id, "t1", "q", "a", at)
	return c
}

func TestDueCardsReferenceDate(t *testing.T) {
	cardA := dueAt("a", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	got := DueCards([]model.Flashcard{cardA}, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []model.Flashcard{cardA}, got)

	got = DueCards([]model.Flashcard{cardA}, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, got)
}

func TestDueCardsIgnoresTimeOfDay(t *testing.T) {
	late := dueAt("late", time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC))
	early := dueAt("early", time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC))
	cards := []model.Flashcard{late, early}

	morning := time.Date(2024, 1, 10, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, cards, DueCards(cards, morning))

	dayBefore := time.Date(2024, 1, 9, 23, 59, 59, 0, time.UTC)
	assert.Empty(t, DueCards(cards, dayBefore))
}

func TestDueCardsKeepsInputOrder(t *testing.T) {
	ref := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cards := []model.Flashcard{
		dueAt("1", ref.AddDate(0, 0, -3)),
		dueAt("2", ref.AddDate(0, 0, 2)),
		dueAt("3", ref),
		dueAt("4", ref.AddDate(0, 0, 1)),
		dueAt("5", ref.AddDate(0, -1, 0)),
	}

	got := DueCards(cards, ref)

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1", "3", "5"}, ids)
}

func TestDueCardsEmptyInput(t *testing.T) {
	assert.Empty(t, DueCards(nil, t0))
}

func TestIsDueUsesReferenceLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-01-10 20:00 UTC is 2024-01-11 05:00 in Tokyo.
	c := dueAt("a", time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC))

	assert.True(t, IsDue(c, time.Date(2024, 1, 11, 8, 0, 0, 0, tokyo)))
	assert.False(t, IsDue(c, time.Date(2024, 1, 10, 22, 0, 0, 0, tokyo)))
}
