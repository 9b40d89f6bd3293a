// handlers/puzzles.go - Puzzle creation and curator operations
package handlers

import (
	"errors"
	"time"

	"dailypuzzle/middleware"
	"dailypuzzle/services"

	"github.com/gofiber/fiber/v2"
)

type CreatePuzzleRequest struct {
	Code       string   `json:"code,omitempty"` // generated when empty
	Statement  string   `json:"statement"`
	Tags       []string `json:"tags"`
	Difficulty int      `json:"difficulty"`
	Answer     string   `json:"answer"`
	ImageURL   string   `json:"image_url,omitempty"`
	Source     string   `json:"source,omitempty"`
}

type RatePuzzleRequest struct {
	Rating int `json:"rating"`
}

type UnscoreRequest struct {
	UserID *uint `json:"user_id,omitempty"` // nil clears everyone
}

// CreatePuzzle adds a puzzle to the pending queue. Any authenticated
// user may create one per rolling 24h window.
func CreatePuzzle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	username, _ := middleware.GetUsername(c)

	var req CreatePuzzleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	source := req.Source
	if source == "" {
		source = "User-created"
	}

	puzzle, err := services.GetLifecycleService().CreatePuzzle(userID, services.CreatePuzzleInput{
		Code:       req.Code,
		Statement:  req.Statement,
		Tags:       req.Tags,
		Difficulty: req.Difficulty,
		Answer:     req.Answer,
		ImageURL:   req.ImageURL,
		Setter:     username,
		Source:     source,
	}, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"puzzle":  puzzle,
	})
}

// ListPuzzles returns code, difficulty and status for every puzzle.
func ListPuzzles(c *fiber.Ctx) error {
	puzzles, err := services.GetLifecycleService().ListPuzzles()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"puzzles": puzzles,
		"total":   len(puzzles),
	})
}

// PostManual activates a specific puzzle right now (curator only).
func PostManual(c *fiber.Ctx) error {
	code := c.Params("code")

	now := time.Now()
	puzzle, err := services.GetLifecycleService().PostManual(code, now)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Manual posts announce through the same feed as scheduled ones.
	BroadcastEvent(services.PuzzleEvent(services.EventPuzzleActivated, puzzle, now))

	return c.JSON(fiber.Map{
		"success": true,
		"puzzle":  puzzle,
	})
}

// UnscorePuzzle zeroes all points for a defective puzzle (curator
// only), optionally scoped to a single user.
func UnscorePuzzle(c *fiber.Ctx) error {
	code := c.Params("code")

	var req UnscoreRequest
	_ = c.BodyParser(&req) // empty body means everyone

	affected, err := services.GetLifecycleService().Unscore(code, req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"code":     code,
		"affected": affected,
	})
}

// RatePuzzle records a 1-5 rating from a solver.
func RatePuzzle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	code := c.Params("code")

	var req RatePuzzleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := services.GetLifecycleService().RatePuzzle(userID, code, req.Rating); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"code":    code,
		"rating":  req.Rating,
	})
}

// respondServiceError maps the lifecycle error taxonomy onto HTTP
// statuses. Unknown errors are storage failures and become 500s.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := 500
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = 404
	case errors.Is(err, services.ErrNotOpen),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrAlreadySolved):
		status = 409
	case errors.Is(err, services.ErrInvalidState):
		status = 422
	case errors.Is(err, services.ErrRateLimited):
		status = 429
	case errors.Is(err, services.ErrForbidden):
		status = 403
	case errors.Is(err, services.ErrInvalidInput):
		status = 400
	}

	message := err.Error()
	if status == 500 {
		message = "An internal error occurred"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
