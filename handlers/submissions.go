// handlers/submissions.go - Answer submission endpoint
package handlers

import (
	"strings"
	"time"

	"dailypuzzle/middleware"
	"dailypuzzle/services"

	"github.com/gofiber/fiber/v2"
)

type SubmitAnswerRequest struct {
	// Either the raw chat-style message ("<code> <answer>")...
	Message string `json:"message,omitempty"`
	// ...or the two fields split out.
	Code   string `json:"code,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// SubmitAnswer records one attempt for the calling user. Accepts the
// same "<code> <answer>" format solvers used to DM the bot.
func SubmitAnswer(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	code, answer, ok := parseSubmission(req)
	if !ok {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid format. Send your answer as: <puzzle_code> <answer>",
		})
	}

	result, err := services.GetLifecycleService().SubmitAnswer(code, userID, answer, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"code":    code,
		"result":  result,
	})
}

// parseSubmission extracts (code, answer) from either request shape.
// The message form splits on the first whitespace, so answers may
// themselves contain spaces.
func parseSubmission(req SubmitAnswerRequest) (string, string, bool) {
	if req.Code != "" && req.Answer != "" {
		return req.Code, req.Answer, true
	}

	parts := strings.SplitN(strings.TrimSpace(req.Message), " ", 2)
	if len(parts) != 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
