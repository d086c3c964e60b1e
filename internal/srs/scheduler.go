// Package srs implements SM-2 style spaced-repetition scheduling: the
// per-rating state transition of a card and selection of due cards.
package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nhle/knowledge-tracker/internal/model"
)

// ErrInvalidQuality is returned when a rating falls outside [0, 5].
// Check with errors.Is.
var ErrInvalidQuality = errors.New("srs: invalid quality")

// Quality is a recall rating from 0 (total blackout) to 5 (perfect recall).
type Quality int

const (
	QualityBlackout          Quality = 0 // Complete failure to recall.
	QualityIncorrect         Quality = 1 // Wrong, but recognised the answer.
	QualityIncorrectFamiliar Quality = 2 // Wrong, but the answer felt easy.
	QualityDifficult         Quality = 3 // Correct with serious difficulty.
	QualityHesitant          Quality = 4 // Correct after some hesitation.
	QualityPerfect           Quality = 5 // Perfect response.
)

// PassThreshold is the lowest quality counted as a successful recall.
const PassThreshold = QualityDifficult

// Validate returns ErrInvalidQuality unless q is within [0, 5].
func (q Quality) Validate() error {
	if q < QualityBlackout || q > QualityPerfect {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return nil
}

// IsLapse reports whether q resets the repetition streak.
func (q Quality) IsLapse() bool {
	return q < PassThreshold
}

// State is the scheduling output of a single rating.
type State struct {
	Interval    int
	EaseFactor  float64
	Repetitions int
}

// NextState computes the next scheduling parameters for card after a rating
// of quality q. It has no side effects and does not touch NextReview or
// LastReview; see Review for that.
func NextState(card model.Flashcard, q Quality) (State, error) {
	if err := q.Validate(); err != nil {
		return State{}, err
	}

	next := State{
		Interval:    card.Interval,
		EaseFactor:  card.EaseFactor,
		Repetitions: card.Repetitions,
	}

	if q.IsLapse() {
		next.Repetitions = 0
		next.Interval = 1
	} else {
		switch card.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(card.Interval) * card.EaseFactor))
		}
		next.Repetitions = card.Repetitions + 1
	}

	// Uses the prior ease factor and quality in both branches.
	d := float64(QualityPerfect - q)
	next.EaseFactor = math.Max(model.MinEaseFactor, card.EaseFactor+(0.1-d*(0.08+d*0.02)))

	return next, nil
}

// Review applies a rating to card at time now and returns the updated card:
// the scheduling state from NextState, NextReview advanced by the new
// interval in days and LastReview set to now. The input card is not modified.
func Review(card model.Flashcard, q Quality, now time.Time) (model.Flashcard, error) {
	next, err := NextState(card, q)
	if err != nil {
		return model.Flashcard{}, err
	}

	reviewed := now
	card.Interval = next.Interval
	card.EaseFactor = next.EaseFactor
	card.Repetitions = next.Repetitions
	card.NextReview = now.AddDate(0, 0, next.Interval)
	card.LastReview = &reviewed
	return card, nil
}
