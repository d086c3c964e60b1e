package srs

import (
	"time"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// truncateDay returns midnight of t's calendar date in t's location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether card's NextReview date is on or before the calendar
// date of ref. Time of day is ignored on both sides; NextReview is compared
// in ref's location.
func IsDue(card model.Flashcard, ref time.Time) bool {
	due := truncateDay(card.NextReview.In(ref.Location()))
	return !due.After(truncateDay(ref))
}

// DueCards returns the cards due on ref's calendar date, keeping their
// input order.
func DueCards(cards []model.Flashcard, ref time.Time) []model.Flashcard {
	var due []model.Flashcard
	for _, c := range cards {
		if IsDue(c, ref) {
			due = append(due, c)
		}
	}
	return due
}
