// Package quiz sequences a review run over a fixed deck of flashcards:
// present a card, flip it, rate it, then advance or complete.
package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/srs"
)

// Sentinel errors for session transitions. Check with errors.Is.
var (
	ErrEmptyDeck   = errors.New("quiz: nothing to review")
	ErrNotFlipped  = errors.New("quiz: card must be flipped before rating")
	ErrCompleted   = errors.New("quiz: session completed")
	ErrInvalidMode = errors.New("quiz: invalid mode")
)

// Mode selects which cards make up a session deck.
type Mode int

const (
	ModeDue Mode = iota // Only cards due today.
	ModeAll             // Every card.
)

// String returns "due" or "all".
func (m Mode) String() string {
	switch m {
	case ModeDue:
		return model.QuizModeDue
	case ModeAll:
		return model.QuizModeAll
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case model.QuizModeDue:
		return ModeDue, nil
	case model.QuizModeAll:
		return ModeAll, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Deck builds the deck for mode from the full card collection. The
// result is a fresh slice; cards is never modified.
func Deck(mode Mode, cards []model.Flashcard, now time.Time) []model.Flashcard {
	if mode == ModeDue {
		return srs.DueCards(cards, now)
	}
	deck := make([]model.Flashcard, len(cards))
	copy(deck, cards)
	return deck
}

// Phase is the position of a session in its lifecycle.
type Phase int

const (
	PhaseIdle       Phase = iota // Not started, or started on an empty deck.
	PhasePresenting              // Question side of the current card shown.
	PhaseFlipped                 // Answer revealed; waiting for a rating.
	PhaseCompleted               // Every card in the deck has been rated.
)

var phaseNames = [...]string{
	PhaseIdle:       "Idle",
	PhasePresenting: "Presenting",
	PhaseFlipped:    "Flipped",
	PhaseCompleted:  "Completed",
}

// String returns the phase name.
func (p Phase) String() string {
	if p >= PhaseIdle && p <= PhaseCompleted {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Session is a single quiz run. The deck is snapshotted when the session
// starts or restarts; cards that become due afterwards are not picked up
// until the next Restart. A Session is not safe for concurrent use.
type Session struct {
	mode     Mode
	deck     []model.Flashcard
	index    int
	phase    Phase
	reviewed int
}

// NewSession returns an idle session in the given mode.
func NewSession(mode Mode) *Session {
	return &Session{mode: mode}
}

// Start begins a run over deck at its first card. An empty deck leaves the
// session idle and returns ErrEmptyDeck.
func (s *Session) Start(deck []model.Flashcard) error {
	s.deck = make([]model.Flashcard, len(deck))
	copy(s.deck, deck)
	s.index = 0
	s.reviewed = 0

	if len(s.deck) == 0 {
		s.phase = PhaseIdle
		return ErrEmptyDeck
	}
	s.phase = PhasePresenting
	return nil
}

// Restart re-snapshots the deck and begins again from the first card,
// from any phase.
func (s *Session) Restart(deck []model.Flashcard) error {
	return s.Start(deck)
}

// SwitchMode changes the deck mode and restarts with deck, which the
// caller builds for the new mode.
func (s *Session) SwitchMode(mode Mode, deck []model.Flashcard) error {
	s.mode = mode
	return s.Restart(deck)
}

// Flip reveals the answer of the current card. It is a no-op unless a card
// is being presented.
func (s *Session) Flip() {
	if s.phase == PhasePresenting {
		s.phase = PhaseFlipped
	}
}

// Rate applies quality to the current card at time now and returns the
// updated card, which the caller must persist. The session then advances
// to the next card or completes after the last one. On error the session
// is left unchanged.
func (s *Session) Rate(q srs.Quality, now time.Time) (model.Flashcard, error) {
	switch s.phase {
	case PhaseFlipped:
	case PhaseCompleted:
		return model.Flashcard{}, ErrCompleted
	case PhaseIdle:
		if len(s.deck) == 0 {
			return model.Flashcard{}, ErrEmptyDeck
		}
		return model.Flashcard{}, ErrNotFlipped
	default:
		return model.Flashcard{}, ErrNotFlipped
	}

	updated, err := srs.Review(s.deck[s.index], q, now)
	if err != nil {
		return model.Flashcard{}, err
	}

	s.deck[s.index] = updated
	s.reviewed++
	if s.index == len(s.deck)-1 {
		s.phase = PhaseCompleted
	} else {
		s.index++
		s.phase = PhasePresenting
	}
	return updated, nil
}

// Current returns the card at the current position. ok is false when the
// session is idle or completed.
func (s *Session) Current() (card model.Flashcard, ok bool) {
	if s.phase != PhasePresenting && s.phase != PhaseFlipped {
		return model.Flashcard{}, false
	}
	return s.deck[s.index], true
}

// Mode returns the deck mode.
func (s *Session) Mode() Mode { return s.mode }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Index returns the zero-based position of the current card.
func (s *Session) Index() int { return s.index }

// Len returns the number of cards in the deck snapshot.
func (s *Session) Len() int { return len(s.deck) }

// Flipped reports whether the current card's answer is revealed.
func (s *Session) Flipped() bool { return s.phase == PhaseFlipped }

// Completed reports whether every card has been rated.
func (s *Session) Completed() bool { return s.phase == PhaseCompleted }

// ReviewedCount returns how many cards have been rated since the last
// start or restart.
func (s *Session) ReviewedCount() int { return s.reviewed }
