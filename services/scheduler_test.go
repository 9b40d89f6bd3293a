package services

import (
	"sync"
	"testing"
	"time"

	"dailypuzzle/config"
	"dailypuzzle/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock pins Now and never fires its timers, so the loop stays
// parked on the stop channel and only the synchronous startup checks
// run.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                         { return c.now }
func (c *fakeClock) After(d time.Duration) <-chan time.Time { return make(chan time.Time) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) snapshot() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

func TestSchedulerStartupRecovery(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	svc := GetLifecycleService()

	// An active puzzle whose window elapsed while the process was down,
	// and a pending one waiting behind it.
	seedPuzzle(t, db, "OLD1", "x", author.ID, t0.Add(-48*time.Hour))
	_, err := svc.ActivateNext(t0.Add(-25 * time.Hour))
	require.NoError(t, err)
	seedPuzzle(t, db, "NEW1", "y", author.ID, t0.Add(-time.Hour))

	notifier := &recordingNotifier{}
	clock := &fakeClock{now: t0}
	sched := NewScheduler(svc, notifier, clock)
	sched.Start()
	sched.Stop()

	var old, fresh models.Puzzle
	require.NoError(t, db.Where("code = ?", "OLD1").First(&old).Error)
	require.NoError(t, db.Where("code = ?", "NEW1").First(&fresh).Error)
	assert.Equal(t, models.PuzzleStatusClosed, old.Status)
	assert.Equal(t, models.PuzzleStatusActive, fresh.Status)

	events := notifier.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, EventPuzzleClosed, events[0].Type)
	assert.Equal(t, "OLD1", events[0].Code)
	assert.Equal(t, EventPuzzleActivated, events[1].Type)
	assert.Equal(t, "NEW1", events[1].Code)
}

func TestSchedulerStartupEmptyQueueIsSilent(t *testing.T) {
	setupTestDB(t)

	notifier := &recordingNotifier{}
	sched := NewScheduler(GetLifecycleService(), notifier, &fakeClock{now: t0})
	sched.Start()
	sched.Stop()

	// Exhaustion is only announced on the daily trigger, never on
	// startup recovery.
	assert.Empty(t, notifier.snapshot())
}

func TestSchedulerStartupDoesNotCloseLiveWindow(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	svc := GetLifecycleService()

	seedPuzzle(t, db, "LIVE", "x", author.ID, t0.Add(-2*time.Hour))
	_, err := svc.ActivateNext(t0.Add(-time.Hour))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	sched := NewScheduler(svc, notifier, &fakeClock{now: t0})
	sched.Start()
	sched.Stop()

	var live models.Puzzle
	require.NoError(t, db.Where("code = ?", "LIVE").First(&live).Error)
	assert.Equal(t, models.PuzzleStatusActive, live.Status)
	assert.Empty(t, notifier.snapshot())
}

func TestNextDailyFire(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	cfg := &config.Config{DailyPostTime: "12:00", DailyPostLocation: loc}

	t.Run("before today's slot", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 9, 30, 0, 0, loc)
		fire := nextDailyFire(now, cfg)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, loc), fire)
	})

	t.Run("exactly at the slot rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, loc)
		fire := nextDailyFire(now, cfg)
		assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, loc), fire)
	})

	t.Run("after today's slot", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 18, 45, 0, 0, loc)
		fire := nextDailyFire(now, cfg)
		assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, loc), fire)
	})

	t.Run("unparseable time falls back to noon", func(t *testing.T) {
		bad := &config.Config{DailyPostTime: "noon", DailyPostLocation: loc}
		now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
		fire := nextDailyFire(now, bad)
		assert.Equal(t, 12, fire.In(loc).Hour())
	})
}
