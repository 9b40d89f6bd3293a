// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"dailypuzzle/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ All migrations completed successfully")
}

// Migrate applies the schema to the given connection. Split out from
// RunMigrations so tests and the seed command can migrate their own DB.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Puzzle{},
		&models.Submission{},
		&models.Rating{},
	); err != nil {
		return err
	}

	createIndexes(conn)
	return nil
}

// createIndexes creates the query-path indexes
func createIndexes(conn *gorm.DB) {
	// Puzzle indexes: activation scans pending rows by age, expiry scans active
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_puzzles_status_created ON puzzles(status, created_at)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_puzzles_creator_created ON puzzles(creator_id, created_at)")

	// Submission indexes: leaderboards group by user, today filters by puzzle
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_puzzle_user ON submissions(puzzle_code, user_id)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id)")
}
