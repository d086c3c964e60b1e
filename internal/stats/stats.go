// Package stats derives dashboard summaries from topic and card collections.
package stats

import (
	"math"
	"time"

	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/srs"
)

// Summary is the dashboard overview of a user's learning data.
type Summary struct {
	TotalTopics    int `json:"totalTopics"`
	TotalCards     int `json:"totalCards"`
	CardsToReview  int `json:"cardsToReview"`
	AverageMastery int `json:"averageMastery"`
	// StreakDays is not derived yet and is always 0.
	StreakDays int `json:"streakDays"`
}

// Summarize computes the summary as of now.
func Summarize(topics []model.Topic, cards []model.Flashcard, now time.Time) Summary {
	return Summary{
		TotalTopics:    len(topics),
		TotalCards:     len(cards),
		CardsToReview:  len(srs.DueCards(cards, now)),
		AverageMastery: averageMastery(topics),
		StreakDays:     0,
	}
}

func averageMastery(topics []model.Topic) int {
	if len(topics) == 0 {
		return 0
	}
	sum := 0
	for _, t := range topics {
		sum += t.Mastery
	}
	return int(math.Round(float64(sum) / float64(len(topics))))
}

// CategoryCount is the number of topics in one category.
type CategoryCount struct {
	Category string
	Topics   int
}

// ByCategory counts topics per category, ordered as in categories with
// unknown categories appended in first-seen order. Empty categories are
// omitted.
func ByCategory(topics []model.Topic, categories []string) []CategoryCount {
	counts := make(map[string]int)
	var extra []string
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c] = true
	}
	for _, t := range topics {
		if !known[t.Category] && counts[t.Category] == 0 {
			extra = append(extra, t.Category)
		}
		counts[t.Category]++
	}

	var out []CategoryCount
	for _, c := range append(append([]string{}, categories...), extra...) {
		if n := counts[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Topics: n})
		}
	}
	return out
}
