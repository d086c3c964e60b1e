package model

import (
	"errors"
	"fmt"
	"time"
)

// DefaultCategory is assigned to topics created without a category.
const DefaultCategory = "Other"

// Mastery bounds for a topic.
const (
	MasteryMin = 0
	MasteryMax = 100
)

// ErrInvalidTopic is returned by Topic.Validate.
var ErrInvalidTopic = errors.New("model: invalid topic")

// Categories is the built-in list of topic categories. It is used for
// grouping and filtering only; topics may carry any category string.
var Categories = []string{
	"Python",
	"Machine Learning",
	"Deep Learning",
	"NLP",
	"Computer Vision",
	"Math",
	"Data Science",
	"Prompt Engineering",
	"Tools & Libraries",
	DefaultCategory,
}

// Topic is a subject the user has learned and tracks over time.
// Deleting a topic deletes every flashcard that references it.
type Topic struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	DateAdded   time.Time `json:"dateAdded" db:"date_added"`
	Mastery     int       `json:"mastery" db:"mastery"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
}

// Validate checks identity and the mastery range.
func (t Topic) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTopic)
	}
	if t.Mastery < MasteryMin || t.Mastery > MasteryMax {
		return fmt.Errorf("%w: %s mastery %d", ErrInvalidTopic, t.ID, t.Mastery)
	}
	return nil
}

// MergeCategories returns the built-in categories followed by any extra
// ones not already present, preserving order.
func MergeCategories(extra []string) []string {
	seen := make(map[string]bool, len(Categories)+len(extra))
	out := make([]string, 0, len(Categories)+len(extra))
	for _, c := range Categories {
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range extra {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
