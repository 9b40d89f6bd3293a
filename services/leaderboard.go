// services/leaderboard.go - Ranked views over the submission ledger
//
// Pure read queries: nothing here mutates state. All three boards are
// recomputed from the ledger and puzzle store on every call, so an
// unscore is reflected immediately.
package services

import (
	"errors"
	"fmt"

	"dailypuzzle/database"
	"dailypuzzle/models"

	"gorm.io/gorm"
)

// OverallEntry is one row of the all-time solver board.
type OverallEntry struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
	SolvedCount int    `json:"solved_count"`
}

// TodayEntry is one row of the active-puzzle board. Only users with at
// least one correct submission appear; their points still include
// penalties from wrong attempts.
type TodayEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// CuratorEntry is one row of the creator board.
type CuratorEntry struct {
	UserID      uint    `json:"user_id"`
	Username    string  `json:"username"`
	PuzzleCount int     `json:"puzzle_count"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

// LeaderboardOverall ranks every user by total points across all
// submissions, ties broken by distinct puzzles solved, then user id.
func LeaderboardOverall(limit int) ([]OverallEntry, error) {
	var entries []OverallEntry
	err := database.GetDB().Raw(`
		SELECT s.user_id,
		       COALESCE(u.username, '') AS username,
		       SUM(s.points) AS total_points,
		       COUNT(DISTINCT CASE WHEN s.is_correct THEN s.puzzle_code END) AS solved_count
		FROM submissions s
		LEFT JOIN users u ON u.id = s.user_id
		GROUP BY s.user_id, u.username
		ORDER BY total_points DESC, solved_count DESC, s.user_id ASC
		LIMIT ?
	`, limit).Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("overall leaderboard: %w", err)
	}
	return entries, nil
}

// LeaderboardToday ranks solvers of the currently active puzzle.
// Returns an empty board when no puzzle is active.
func LeaderboardToday(limit int) (string, []TodayEntry, error) {
	db := database.GetDB()

	var active models.Puzzle
	err := db.Where("status = ?", models.PuzzleStatusActive).First(&active).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("finding active puzzle: %w", err)
	}

	var entries []TodayEntry
	err = db.Raw(`
		SELECT s.user_id,
		       COALESCE(u.username, '') AS username,
		       SUM(s.points) AS points
		FROM submissions s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.puzzle_code = ?
		GROUP BY s.user_id, u.username
		HAVING MAX(CASE WHEN s.is_correct THEN 1 ELSE 0 END) = 1
		ORDER BY points DESC, s.user_id ASC
		LIMIT ?
	`, active.Code, limit).Scan(&entries).Error
	if err != nil {
		return "", nil, fmt.Errorf("today leaderboard: %w", err)
	}
	return active.Code, entries, nil
}

// LeaderboardCurators ranks puzzle creators by volume, then by the
// average solver rating of their puzzles (0 when unrated).
func LeaderboardCurators(limit int) ([]CuratorEntry, error) {
	var entries []CuratorEntry
	err := database.GetDB().Raw(`
		SELECT p.creator_id AS user_id,
		       COALESCE(u.username, '') AS username,
		       COUNT(*) AS puzzle_count,
		       SUM(p.rating_count) AS rating_count,
		       CASE WHEN SUM(p.rating_count) > 0
		            THEN CAST(SUM(p.rating_sum) AS FLOAT) / SUM(p.rating_count)
		            ELSE 0 END AS avg_rating
		FROM puzzles p
		LEFT JOIN users u ON u.id = p.creator_id
		WHERE p.creator_id <> 0
		GROUP BY p.creator_id, u.username
		ORDER BY puzzle_count DESC, avg_rating DESC
		LIMIT ?
	`, limit).Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("curator leaderboard: %w", err)
	}
	return entries, nil
}
