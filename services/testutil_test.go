package services

import (
	"fmt"
	"testing"
	"time"

	"dailypuzzle/database"
	"dailypuzzle/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB wires an isolated in-memory database into the package
// singletons. Each test gets its own named memory DB so parallel
// state never leaks between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.SetDB(db)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:  username,
		Password:  "",
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedPuzzle inserts a pending puzzle directly, bypassing the creation
// cooldown so fixtures can share a creator.
func seedPuzzle(t *testing.T, db *gorm.DB, code, answer string, creatorID uint, createdAt time.Time) *models.Puzzle {
	t.Helper()

	puzzle := models.Puzzle{
		Code:       code,
		Statement:  "What is the answer to " + code + "?",
		Difficulty: 3,
		Answer:     answer,
		CreatorID:  creatorID,
		Status:     models.PuzzleStatusPending,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&puzzle).Error)
	return &puzzle
}
