// services/notifier.go - Lifecycle event fan-out
package services

import (
	"time"

	"dailypuzzle/models"
)

// EventType identifies a lifecycle announcement.
type EventType string

const (
	EventPuzzleActivated EventType = "puzzle_activated"
	EventPuzzleClosed    EventType = "puzzle_closed"
	EventQueueExhausted  EventType = "queue_exhausted"
)

// Event is what the adapter announces to the outside world when a
// puzzle opens or closes, or when the daily post finds an empty queue.
type Event struct {
	Type       EventType  `json:"type"`
	Code       string     `json:"code,omitempty"`
	Statement  string     `json:"statement,omitempty"`
	Difficulty int        `json:"difficulty,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Setter     string     `json:"setter,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	ClosesAt   *time.Time `json:"closes_at,omitempty"`
	At         time.Time  `json:"at"`
}

// Notifier receives lifecycle events. The websocket hub implements it;
// a nil notifier is valid and drops everything.
type Notifier interface {
	Notify(Event)
}

// PuzzleEvent builds the announcement for an opened or closed puzzle.
func PuzzleEvent(t EventType, p *models.Puzzle, at time.Time) Event {
	return Event{
		Type:       t,
		Code:       p.Code,
		Statement:  p.Statement,
		Difficulty: p.Difficulty,
		Tags:       p.TagList(),
		Setter:     p.Setter,
		ImageURL:   p.ImageURL,
		ClosesAt:   p.ClosesAt,
		At:         at,
	}
}
