// services/lifecycle.go - Puzzle lifecycle orchestration
//
// Owns the pending -> active -> closed state machine. Lifecycle
// transitions (activate/post/expire) are serialized behind a mutex and
// double-checked inside their transaction, so "at most one active
// puzzle" holds even when a scheduler tick races a curator command.
// Submissions are not serialized; each one is an independent insert
// that reads the puzzle snapshot inside its own transaction.
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dailypuzzle/config"
	"dailypuzzle/database"
	"dailypuzzle/models"
	"dailypuzzle/utils"

	"gorm.io/gorm"
)

// LifecycleService exposes the core competition operations to the
// HTTP adapter and the scheduler.
type LifecycleService struct {
	mu sync.Mutex // serializes activate/post/expire
}

var lifecycleService *LifecycleService

// InitLifecycleService initializes the singleton lifecycle service.
func InitLifecycleService() {
	lifecycleService = &LifecycleService{}
}

// GetLifecycleService returns the initialized lifecycle service.
func GetLifecycleService() *LifecycleService {
	if lifecycleService == nil {
		InitLifecycleService()
	}
	return lifecycleService
}

// CreatePuzzleInput carries the caller-supplied puzzle fields.
type CreatePuzzleInput struct {
	Code       string
	Statement  string
	Tags       []string
	Difficulty int
	Answer     string
	ImageURL   string
	Setter     string
	Source     string
}

// SubmissionResult is what a solver gets back for one attempt.
type SubmissionResult struct {
	IsCorrect   bool `json:"is_correct"`
	Points      int  `json:"points"`
	PuzzleTotal int  `json:"puzzle_total"` // running total for this user on this puzzle
}

// PuzzleSummary is the listing row: code, difficulty and status only.
type PuzzleSummary struct {
	Code       string              `json:"code"`
	Difficulty int                 `json:"difficulty"`
	Status     models.PuzzleStatus `json:"status"`
}

// CreatePuzzle validates and stores a new pending puzzle. Each creator
// may add at most one puzzle per rolling cooldown window, anchored to
// the created_at of their previous puzzles (not calendar days).
func (s *LifecycleService) CreatePuzzle(creatorID uint, in CreatePuzzleInput, now time.Time) (*models.Puzzle, error) {
	cfg := config.Get()
	db := database.GetDB()

	statement := strings.TrimSpace(in.Statement)
	answer := strings.TrimSpace(in.Answer)
	if statement == "" {
		return nil, fmt.Errorf("%w: statement cannot be empty", ErrInvalidInput)
	}
	if answer == "" {
		return nil, fmt.Errorf("%w: answer cannot be empty", ErrInvalidInput)
	}
	if in.Difficulty < 1 || in.Difficulty > 5 {
		return nil, fmt.Errorf("%w: difficulty must be between 1 and 5", ErrInvalidInput)
	}

	cutoff := now.Add(-cfg.CreateCooldown())
	var recent int64
	if err := db.Model(&models.Puzzle{}).
		Where("creator_id = ? AND created_at >= ?", creatorID, cutoff).
		Count(&recent).Error; err != nil {
		return nil, fmt.Errorf("checking creation cooldown: %w", err)
	}
	if recent > 0 {
		return nil, ErrRateLimited
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		generated, err := s.uniqueCode(db)
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		var existing int64
		if err := db.Model(&models.Puzzle{}).Where("code = ?", code).Count(&existing).Error; err != nil {
			return nil, fmt.Errorf("checking code uniqueness: %w", err)
		}
		if existing > 0 {
			return nil, fmt.Errorf("%w: code %q is already in use", ErrInvalidInput, code)
		}
	}

	puzzle := models.Puzzle{
		Code:       code,
		Statement:  statement,
		Tags:       strings.Join(in.Tags, ","),
		Difficulty: in.Difficulty,
		Answer:     answer,
		ImageURL:   in.ImageURL,
		Setter:     in.Setter,
		Source:     in.Source,
		CreatorID:  creatorID,
		Status:     models.PuzzleStatusPending,
		CreatedAt:  now,
	}

	if err := db.Create(&puzzle).Error; err != nil {
		return nil, fmt.Errorf("creating puzzle: %w", err)
	}
	return &puzzle, nil
}

// ActivateNext opens the oldest pending puzzle. Returns (nil, nil)
// when the queue is empty or another puzzle is already active, so the
// scheduler can treat "nothing to do" as a normal outcome.
func (s *LifecycleService) ActivateNext(now time.Time) (*models.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var activated *models.Puzzle
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var activeCount int64
		if err := tx.Model(&models.Puzzle{}).
			Where("status = ?", models.PuzzleStatusActive).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return nil
		}

		var next models.Puzzle
		err := tx.Where("status = ?", models.PuzzleStatusPending).
			Order("created_at ASC, code ASC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.openPuzzle(tx, &next, now); err != nil {
			return err
		}
		activated = &next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("activating next puzzle: %w", err)
	}
	return activated, nil
}

// PostManual activates a specific pending puzzle on a curator's
// request, bypassing queue order but not the single-active invariant.
func (s *LifecycleService) PostManual(code string, now time.Time) (*models.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posted *models.Puzzle
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var puzzle models.Puzzle
		err := tx.Where("code = ?", code).First(&puzzle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if puzzle.Status != models.PuzzleStatusPending {
			return ErrInvalidState
		}

		var activeCount int64
		if err := tx.Model(&models.Puzzle{}).
			Where("status = ? AND code <> ?", models.PuzzleStatusActive, code).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return ErrConflict
		}

		if err := s.openPuzzle(tx, &puzzle, now); err != nil {
			return err
		}
		posted = &puzzle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// ExpireDue closes the active puzzle once its window has elapsed.
// Idempotent: early calls and repeated calls after closure are no-ops.
func (s *LifecycleService) ExpireDue(now time.Time) (*models.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed *models.Puzzle
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var puzzle models.Puzzle
		err := tx.Where("status = ?", models.PuzzleStatusActive).First(&puzzle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if puzzle.ClosesAt == nil || now.Before(*puzzle.ClosesAt) {
			return nil
		}

		res := tx.Model(&models.Puzzle{}).
			Where("id = ? AND status = ?", puzzle.ID, models.PuzzleStatusActive).
			Update("status", models.PuzzleStatusClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			puzzle.Status = models.PuzzleStatusClosed
			closed = &puzzle
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expiring puzzle: %w", err)
	}
	return closed, nil
}

// SubmitAnswer records one attempt against the active window. The
// puzzle snapshot (status, opened_at, answer) and the ledger insert
// share one transaction, so a submission racing an expiry is accepted
// or rejected whole, never half-recorded.
func (s *LifecycleService) SubmitAnswer(code string, userID uint, rawAnswer string, now time.Time) (*SubmissionResult, error) {
	cfg := config.Get()

	var result SubmissionResult
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var puzzle models.Puzzle
		err := tx.Where("code = ?", code).First(&puzzle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if puzzle.Status != models.PuzzleStatusActive || puzzle.OpenedAt == nil {
			return ErrNotOpen
		}
		// The window may have elapsed before the expiry tick ran.
		if puzzle.ClosesAt != nil && !now.Before(*puzzle.ClosesAt) {
			return ErrNotOpen
		}
		if puzzle.CreatorID != 0 && puzzle.CreatorID == userID {
			return fmt.Errorf("%w: authors cannot answer their own puzzle", ErrForbidden)
		}

		var solved int64
		if err := tx.Model(&models.Submission{}).
			Where("puzzle_code = ? AND user_id = ? AND is_correct = ?", code, userID, true).
			Count(&solved).Error; err != nil {
			return err
		}
		if solved > 0 {
			return ErrAlreadySolved
		}

		elapsed := int64(now.Sub(*puzzle.OpenedAt) / time.Second)
		correct := normalizeAnswer(rawAnswer) == normalizeAnswer(puzzle.Answer)
		points := Score(correct, elapsed)

		attempt := models.Submission{
			PuzzleCode:  code,
			UserID:      userID,
			Answer:      rawAnswer,
			IsCorrect:   correct,
			Points:      points,
			SubmittedAt: now,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		// Credit the author once per solve, as a regular ledger row so
		// it flows into the overall totals (and gets wiped by unscore).
		if correct && puzzle.CreatorID != 0 && cfg.AuthorBonusPerSolve > 0 {
			bonus := models.Submission{
				PuzzleCode:  code,
				UserID:      puzzle.CreatorID,
				Answer:      models.AuthorBonusAnswer,
				IsCorrect:   true,
				Points:      cfg.AuthorBonusPerSolve,
				SubmittedAt: now,
			}
			if err := tx.Create(&bonus).Error; err != nil {
				return err
			}
		}

		var total int64
		if err := tx.Model(&models.Submission{}).
			Where("puzzle_code = ? AND user_id = ?", code, userID).
			Select("COALESCE(SUM(points), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		result = SubmissionResult{
			IsCorrect:   correct,
			Points:      points,
			PuzzleTotal: int(total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RatePuzzle upserts a solver's 1-5 rating. Only users with at least
// one correct submission for the puzzle may rate it.
func (s *LifecycleService) RatePuzzle(userID uint, code string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	return database.GetDB().Transaction(func(tx *gorm.DB) error {
		var puzzle models.Puzzle
		err := tx.Where("code = ?", code).First(&puzzle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var solved int64
		if err := tx.Model(&models.Submission{}).
			Where("puzzle_code = ? AND user_id = ? AND is_correct = ?", code, userID, true).
			Count(&solved).Error; err != nil {
			return err
		}
		if solved == 0 {
			return fmt.Errorf("%w: rate puzzles you have solved", ErrForbidden)
		}

		var existing models.Rating
		err = tx.Where("puzzle_code = ? AND user_id = ?", code, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Rating{
				PuzzleCode: code,
				UserID:     userID,
				Rating:     rating,
			}).Error; err != nil {
				return err
			}
			puzzle.RatingSum += rating
			puzzle.RatingCount++
		case err != nil:
			return err
		default:
			delta := rating - existing.Rating
			if err := tx.Model(&existing).Update("rating", rating).Error; err != nil {
				return err
			}
			puzzle.RatingSum += delta
		}

		return tx.Model(&puzzle).Updates(map[string]interface{}{
			"rating_sum":   puzzle.RatingSum,
			"rating_count": puzzle.RatingCount,
		}).Error
	})
}

// Unscore zeroes out points and correct flags for a defective puzzle,
// for one user or for everyone. The reset is transactional; on a
// transient storage failure it is retried once.
func (s *LifecycleService) Unscore(code string, userID *uint) (int64, error) {
	db := database.GetDB()

	var exists int64
	if err := db.Model(&models.Puzzle{}).Where("code = ?", code).Count(&exists).Error; err != nil {
		return 0, fmt.Errorf("looking up puzzle: %w", err)
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	reset := func() (int64, error) {
		var affected int64
		err := db.Transaction(func(tx *gorm.DB) error {
			q := tx.Model(&models.Submission{}).Where("puzzle_code = ?", code)
			if userID != nil {
				q = q.Where("user_id = ?", *userID)
			}
			res := q.Updates(map[string]interface{}{
				"points":     0,
				"is_correct": false,
			})
			if res.Error != nil {
				return res.Error
			}
			affected = res.RowsAffected
			return nil
		})
		return affected, err
	}

	affected, err := reset()
	if err != nil {
		// One retry on transient storage failure, then give up.
		affected, err = reset()
	}
	if err != nil {
		return 0, fmt.Errorf("unscoring %s: %w", code, err)
	}
	return affected, nil
}

// ListPuzzles returns every puzzle's code, difficulty and status,
// newest first.
func (s *LifecycleService) ListPuzzles() ([]PuzzleSummary, error) {
	var rows []PuzzleSummary
	err := database.GetDB().Model(&models.Puzzle{}).
		Select("code, difficulty, status").
		Order("created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing puzzles: %w", err)
	}
	return rows, nil
}

// openPuzzle performs the check-and-set pending -> active transition.
func (s *LifecycleService) openPuzzle(tx *gorm.DB, puzzle *models.Puzzle, now time.Time) error {
	closesAt := now.Add(config.Get().Window())
	res := tx.Model(&models.Puzzle{}).
		Where("id = ? AND status = ?", puzzle.ID, models.PuzzleStatusPending).
		Updates(map[string]interface{}{
			"status":    models.PuzzleStatusActive,
			"opened_at": now,
			"closes_at": closesAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrInvalidState
	}
	puzzle.Status = models.PuzzleStatusActive
	puzzle.OpenedAt = &now
	puzzle.ClosesAt = &closesAt
	return nil
}

// uniqueCode generates a short code that is not yet taken.
func (s *LifecycleService) uniqueCode(db *gorm.DB) (string, error) {
	for i := 0; i < 10; i++ {
		code := utils.GeneratePuzzleCode(6)
		var taken int64
		if err := db.Model(&models.Puzzle{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("checking generated code: %w", err)
		}
		if taken == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique puzzle code")
}

// normalizeAnswer trims surrounding whitespace and lowercases, nothing
// more. "42" and "42.0" stay different on purpose.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
