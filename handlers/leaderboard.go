// handlers/leaderboard.go - Ranked views over the ledger
package handlers

import (
	"strconv"

	"dailypuzzle/services"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the overall solver leaderboard
// GET /api/leaderboard?limit=10
func GetLeaderboard(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 10)

	entries, err := services.LeaderboardOverall(limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"entries": entries,
		"limit":   limit,
	})
}

// GetTodayLeaderboard returns standings on the active puzzle
// GET /api/leaderboard/today?limit=10
func GetTodayLeaderboard(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 10)

	code, entries, err := services.LeaderboardToday(limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	if code == "" {
		return c.JSON(fiber.Map{
			"success": true,
			"active":  false,
			"entries": []services.TodayEntry{},
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"active":  true,
		"code":    code,
		"entries": entries,
		"limit":   limit,
	})
}

// GetCuratorLeaderboard returns the puzzle-creator leaderboard
// GET /api/leaderboard/curators?limit=10
func GetCuratorLeaderboard(c *fiber.Ctx) error {
	limit := parseLimit(c.Query("limit"), 10)

	entries, err := services.LeaderboardCurators(limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"entries": entries,
		"limit":   limit,
	})
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
