// services/scheduler.go - Daily activation and window-expiry timer
//
// One activation fires per day at the configured wall-clock time; a
// faster periodic check makes sure an elapsed window is never left
// open longer than the check interval. On startup both checks run once
// so downtime never strands a puzzle.
package services

import (
	"fmt"
	"log"
	"time"

	"dailypuzzle/config"
	"dailypuzzle/database"
	"dailypuzzle/models"
)

// Clock abstracts time so scheduler behavior is testable without
// waiting on wall-clock time.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler drives the lifecycle service from a background goroutine.
type Scheduler struct {
	lifecycle *LifecycleService
	notifier  Notifier
	clock     Clock

	stop chan struct{}
	done chan struct{}
}

var scheduler *Scheduler

// InitScheduler initializes the singleton scheduler.
func InitScheduler(lifecycle *LifecycleService, notifier Notifier) {
	scheduler = NewScheduler(lifecycle, notifier, nil)
}

// GetScheduler returns the initialized scheduler.
func GetScheduler() *Scheduler {
	return scheduler
}

// NewScheduler builds a scheduler; a nil clock means the system clock.
func NewScheduler(lifecycle *LifecycleService, notifier Notifier, clock Clock) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		lifecycle: lifecycle,
		notifier:  notifier,
		clock:     clock,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the startup recovery checks, then launches the timer loop.
func (s *Scheduler) Start() {
	// Recover anything missed while the process was down: close an
	// overdue window first, then fill the slot it freed.
	s.runExpiry()
	s.runActivation(false)

	go s.loop()
	log.Println("⏰ Scheduler started")
}

// Stop terminates the timer loop and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	log.Println("Scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)
	cfg := config.Get()

	for {
		now := s.clock.Now()
		daily := s.clock.After(nextDailyFire(now, cfg).Sub(now))
		expiry := s.clock.After(cfg.ExpiryCheckInterval)

		select {
		case <-s.stop:
			return
		case <-daily:
			s.runActivation(true)
		case <-expiry:
			s.runExpiry()
		}
	}
}

// runActivation opens the next queued puzzle. The exhaustion notice is
// only announced on the daily trigger, not on startup recovery.
func (s *Scheduler) runActivation(announceExhaustion bool) {
	now := s.clock.Now()
	puzzle, err := s.lifecycle.ActivateNext(now)
	if err != nil {
		log.Printf("Scheduler: activation failed: %v", err)
		return
	}
	if puzzle != nil {
		log.Printf("📤 Activated puzzle %s", puzzle.Code)
		s.notify(PuzzleEvent(EventPuzzleActivated, puzzle, now))
		return
	}

	if !announceExhaustion {
		return
	}
	pending, err := s.pendingCount()
	if err != nil {
		log.Printf("Scheduler: pending count failed: %v", err)
		return
	}
	if pending == 0 {
		log.Println("😔 No pending puzzles left, announcing exhaustion")
		s.notify(Event{Type: EventQueueExhausted, At: now})
	}
}

func (s *Scheduler) runExpiry() {
	now := s.clock.Now()
	puzzle, err := s.lifecycle.ExpireDue(now)
	if err != nil {
		log.Printf("Scheduler: expiry check failed: %v", err)
		return
	}
	if puzzle != nil {
		log.Printf("🔒 Closed puzzle %s", puzzle.Code)
		s.notify(PuzzleEvent(EventPuzzleClosed, puzzle, now))
	}
}

func (s *Scheduler) notify(e Event) {
	if s.notifier != nil {
		s.notifier.Notify(e)
	}
}

func (s *Scheduler) pendingCount() (int64, error) {
	var n int64
	err := database.GetDB().Model(&models.Puzzle{}).
		Where("status = ?", models.PuzzleStatusPending).
		Count(&n).Error
	return n, err
}

// nextDailyFire returns the next occurrence of the configured daily
// post time in its configured timezone, strictly after now.
func nextDailyFire(now time.Time, cfg *config.Config) time.Time {
	var hour, minute int
	if _, err := fmt.Sscanf(cfg.DailyPostTime, "%d:%d", &hour, &minute); err != nil {
		hour, minute = 12, 0
	}

	local := now.In(cfg.DailyPostLocation)
	fire := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, cfg.DailyPostLocation)
	if !fire.After(now) {
		fire = fire.Add(24 * time.Hour)
	}
	return fire
}
