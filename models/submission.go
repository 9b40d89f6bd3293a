// models/submission.go - Submission ledger and rating models
package models

import (
	"time"
)

// AuthorBonusAnswer marks the synthetic ledger rows that credit a
// puzzle's author when somebody solves it.
const AuthorBonusAnswer = "AUTHOR_BONUS"

// Submission is one row of the append-only attempt ledger. Rows are
// never edited after insert; the only sanctioned mutation is the bulk
// unscore reset, which zeroes points and clears is_correct.
type Submission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PuzzleCode  string    `json:"puzzle_code" gorm:"not null;index;size:50"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Answer      string    `json:"answer" gorm:"not null;size:500"` // raw, as submitted
	IsCorrect   bool      `json:"is_correct" gorm:"default:false"`
	Points      int       `json:"points" gorm:"default:0"` // negative for penalties
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
}

// Rating is a solver's 1-5 verdict on a puzzle. One row per
// (puzzle, user); repeated ratings overwrite the previous value.
type Rating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PuzzleCode string    `json:"puzzle_code" gorm:"not null;uniqueIndex:idx_ratings_puzzle_user;size:50"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_ratings_puzzle_user"`
	Rating     int       `json:"rating" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (Rating) TableName() string {
	return "ratings"
}
