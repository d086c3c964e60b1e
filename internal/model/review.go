package model

import "time"

// ReviewLog records a single rating applied to a card during a quiz.
type ReviewLog struct {
	ID         string    `json:"id" db:"id"`
	CardID     string    `json:"cardId" db:"card_id"`
	Quality    int       `json:"quality" db:"quality"`
	ReviewedAt time.Time `json:"timestamp" db:"reviewed_at"`
}
