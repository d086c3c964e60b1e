package quiz

import "github.com/nhle/knowledge-tracker/internal/srs"

// Rating is one of the answer buttons offered after a card is flipped.
type Rating struct {
	Label       string
	Key         string
	Quality     srs.Quality
	Description string
}

// Ratings are the choices offered in the quiz, in display order.
var Ratings = []Rating{
	{Label: "Again", Key: "1", Quality: srs.QualityBlackout, Description: "Completely forgot"},
	{Label: "Hard", Key: "2", Quality: srs.QualityIncorrectFamiliar, Description: "Remembered with difficulty"},
	{Label: "Good", Key: "3", Quality: srs.QualityHesitant, Description: "Remembered correctly"},
	{Label: "Easy", Key: "4", Quality: srs.QualityPerfect, Description: "Too easy"},
}

// RatingForKey returns the rating bound to key.
func RatingForKey(key string) (Rating, bool) {
	for _, r := range Ratings {
		if r.Key == key {
			return r, true
		}
	}
	return Rating{}, false
}
