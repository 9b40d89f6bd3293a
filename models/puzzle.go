// models/puzzle.go - Puzzle lifecycle model
package models

import (
	"strings"
	"time"
)

// Puzzle status constants
type PuzzleStatus string

const (
	PuzzleStatusPending PuzzleStatus = "pending"
	PuzzleStatusActive  PuzzleStatus = "active"
	PuzzleStatusClosed  PuzzleStatus = "closed"
)

// Puzzle represents one daily challenge. A puzzle moves
// pending -> active -> closed and never backwards; OpenedAt is written
// exactly once, on activation.
type Puzzle struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	Code       string       `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Statement  string       `json:"statement" gorm:"not null;type:text"`
	Tags       string       `json:"tags" gorm:"size:500"` // comma-separated
	Difficulty int          `json:"difficulty" gorm:"not null"`
	Answer     string       `json:"-" gorm:"not null;size:500"` // canonical, never serialized
	ImageURL   string       `json:"image_url,omitempty" gorm:"size:500"`
	Setter     string       `json:"setter" gorm:"size:100"`
	Source     string       `json:"source" gorm:"size:100"`
	CreatorID  uint         `json:"creator_id" gorm:"index"`
	Creator    *User        `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Status     PuzzleStatus `json:"status" gorm:"not null;default:'pending';index;size:20"`
	OpenedAt   *time.Time   `json:"opened_at"`
	ClosesAt   *time.Time   `json:"closes_at"`

	// Rating aggregates, maintained by the rating upsert
	RatingSum   int `json:"rating_sum" gorm:"default:0"`
	RatingCount int `json:"rating_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
}

// TagList splits the stored comma-separated tags.
func (p *Puzzle) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// AvgRating returns the mean solver rating, or 0 when unrated.
func (p *Puzzle) AvgRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return float64(p.RatingSum) / float64(p.RatingCount)
}

func (Puzzle) TableName() string {
	return "puzzles"
}
