package services

import (
	"testing"
	"time"

	"dailypuzzle/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardOverall(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	ledger := []models.Submission{
		// alice: 900 total, 2 distinct solves
		{PuzzleCode: "P1", UserID: alice.ID, Answer: "a", IsCorrect: true, Points: 500, SubmittedAt: t0},
		{PuzzleCode: "P2", UserID: alice.ID, Answer: "a", IsCorrect: true, Points: 400, SubmittedAt: t0},
		// bob: 900 total, 1 solve (tie on points, fewer solves)
		{PuzzleCode: "P1", UserID: bob.ID, Answer: "b", IsCorrect: false, Points: -50, SubmittedAt: t0},
		{PuzzleCode: "P1", UserID: bob.ID, Answer: "a", IsCorrect: true, Points: 950, SubmittedAt: t0},
		// carol: 1000 total, 1 solve
		{PuzzleCode: "P2", UserID: carol.ID, Answer: "a", IsCorrect: true, Points: 1000, SubmittedAt: t0},
	}
	require.NoError(t, db.Create(&ledger).Error)

	entries, err := LeaderboardOverall(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "carol", entries[0].Username)
	assert.Equal(t, 1000, entries[0].TotalPoints)

	// alice and bob tie on points; alice wins on solved count
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, 2, entries[1].SolvedCount)
	assert.Equal(t, "bob", entries[2].Username)
	assert.Equal(t, 1, entries[2].SolvedCount)
}

func TestLeaderboardToday(t *testing.T) {
	db := setupTestDB(t)
	author := createTestUser(t, db, "author")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := GetLifecycleService()

	t.Run("empty when nothing active", func(t *testing.T) {
		code, entries, err := LeaderboardToday(10)
		require.NoError(t, err)
		assert.Empty(t, code)
		assert.Empty(t, entries)
	})

	seedPuzzle(t, db, "2089", "42", author.ID, t0)
	_, err := svc.ActivateNext(t0)
	require.NoError(t, err)

	// Alice solves just inside the first decay interval
	res, err := svc.SubmitAnswer("2089", alice.ID, "42", t0.Add(119*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Points)

	// Bob only gets a wrong attempt in
	_, err = svc.SubmitAnswer("2089", bob.ID, "41", t0.Add(1000*time.Second))
	require.NoError(t, err)

	code, entries, err := LeaderboardToday(10)
	require.NoError(t, err)
	assert.Equal(t, "2089", code)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Username)
	}
	assert.Contains(t, names, "alice")
	assert.NotContains(t, names, "bob", "no correct submission, excluded despite penalty rows")
	assert.Contains(t, names, "author", "author bonus rows count as solves")

	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 1000, entries[0].Points)
}

func TestLeaderboardCurators(t *testing.T) {
	db := setupTestDB(t)
	prolific := createTestUser(t, db, "prolific")
	quality := createTestUser(t, db, "quality")

	puzzles := []models.Puzzle{
		{Code: "A1", Statement: "s", Difficulty: 1, Answer: "x", CreatorID: prolific.ID,
			Status: models.PuzzleStatusClosed, RatingSum: 6, RatingCount: 3, CreatedAt: t0},
		{Code: "A2", Statement: "s", Difficulty: 1, Answer: "x", CreatorID: prolific.ID,
			Status: models.PuzzleStatusPending, CreatedAt: t0},
		{Code: "B1", Statement: "s", Difficulty: 1, Answer: "x", CreatorID: quality.ID,
			Status: models.PuzzleStatusClosed, RatingSum: 10, RatingCount: 2, CreatedAt: t0},
	}
	require.NoError(t, db.Create(&puzzles).Error)

	entries, err := LeaderboardCurators(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Volume beats rating
	assert.Equal(t, "prolific", entries[0].Username)
	assert.Equal(t, 2, entries[0].PuzzleCount)
	assert.InDelta(t, 2.0, entries[0].AvgRating, 0.001)

	assert.Equal(t, "quality", entries[1].Username)
	assert.Equal(t, 1, entries[1].PuzzleCount)
	assert.InDelta(t, 5.0, entries[1].AvgRating, 0.001)
}

func TestLeaderboardCuratorsUnratedIsZero(t *testing.T) {
	db := setupTestDB(t)
	setter := createTestUser(t, db, "setter")
	seedPuzzle(t, db, "Z100", "x", setter.ID, t0)

	entries, err := LeaderboardCurators(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].AvgRating)
	assert.Zero(t, entries[0].RatingCount)
}
