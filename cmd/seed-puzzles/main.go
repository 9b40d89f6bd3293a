// cmd/seed-puzzles - Bulk puzzle importer
//
// Reads a JSON array of puzzles and inserts them into the pending
// queue, skipping codes that already exist. Useful for loading a
// backlog prepared outside the service.
//
// Usage: seed-puzzles [puzzles.json]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dailypuzzle/database"
	"dailypuzzle/models"

	"github.com/joho/godotenv"
)

type JSONPuzzle struct {
	Code       string   `json:"code"`
	Statement  string   `json:"statement"`
	Tags       []string `json:"tags"`
	Difficulty int      `json:"difficulty"`
	Answer     string   `json:"answer"`
	ImageURL   string   `json:"image_url"`
	Setter     string   `json:"setter"`
	Source     string   `json:"source"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	jsonPath := "./puzzles.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var entries []JSONPuzzle
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	fmt.Printf("Found %d puzzles in %s\n\n", len(entries), jsonPath)

	database.InitDB()
	defer database.CloseDB()
	db := database.GetDB()

	imported, skipped := 0, 0
	for _, entry := range entries {
		if entry.Code == "" || strings.TrimSpace(entry.Statement) == "" || strings.TrimSpace(entry.Answer) == "" {
			log.Printf("Skipping invalid entry %q (missing code/statement/answer)", entry.Code)
			skipped++
			continue
		}
		if entry.Difficulty < 1 || entry.Difficulty > 5 {
			log.Printf("Skipping %q: difficulty %d out of range", entry.Code, entry.Difficulty)
			skipped++
			continue
		}

		var existing int64
		db.Model(&models.Puzzle{}).Where("code = ?", entry.Code).Count(&existing)
		if existing > 0 {
			skipped++
			continue
		}

		source := entry.Source
		if source == "" {
			source = "Imported"
		}

		puzzle := models.Puzzle{
			Code:       entry.Code,
			Statement:  strings.TrimSpace(entry.Statement),
			Tags:       strings.Join(entry.Tags, ","),
			Difficulty: entry.Difficulty,
			Answer:     strings.TrimSpace(entry.Answer),
			ImageURL:   entry.ImageURL,
			Setter:     entry.Setter,
			Source:     source,
			Status:     models.PuzzleStatusPending,
			CreatedAt:  time.Now(),
		}
		if err := db.Create(&puzzle).Error; err != nil {
			log.Printf("Error inserting %q: %v", entry.Code, err)
			skipped++
			continue
		}
		imported++
	}

	fmt.Printf("\n✅ Imported %d puzzle(s), skipped %d\n", imported, skipped)
}
