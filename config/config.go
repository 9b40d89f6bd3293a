// config/config.go - Tunable constants for the puzzle competition
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds every externally tunable knob of the competition.
// Values come from the environment (optionally via a .env file loaded
// in main) and fall back to the defaults the bot has always used.
type Config struct {
	// Scoring
	BasePoints           int // points awarded for an instant correct solve
	DecayIntervalSeconds int // 1 point lost per interval
	WrongPenalty         int // points deducted per wrong attempt
	AuthorBonusPerSolve  int // points credited to the author per correct solve

	// Lifecycle
	WindowHours         int            // how long a puzzle stays open
	CreateCooldownHours int            // rolling window for puzzle creation
	DailyPostTime       string         // "HH:MM" wall-clock activation time
	DailyPostLocation   *time.Location // timezone of DailyPostTime
	ExpiryCheckInterval time.Duration  // how often expire checks run
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

func load() *Config {
	tzName := getEnv("DAILY_POST_TZ", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, falling back to UTC", tzName)
		loc = time.UTC
	}

	return &Config{
		BasePoints:           getEnvInt("BASE_POINTS", 1000),
		DecayIntervalSeconds: getEnvInt("DECAY_INTERVAL_SECONDS", 120),
		WrongPenalty:         getEnvInt("WRONG_PENALTY", 50),
		AuthorBonusPerSolve:  getEnvInt("AUTHOR_BONUS_PER_SOLVE", 20),
		WindowHours:          getEnvInt("PUZZLE_WINDOW_HOURS", 24),
		CreateCooldownHours:  getEnvInt("CREATE_COOLDOWN_HOURS", 24),
		DailyPostTime:        getEnv("DAILY_POST_TIME", "12:00"),
		DailyPostLocation:    loc,
		ExpiryCheckInterval:  time.Duration(getEnvInt("EXPIRY_CHECK_INTERVAL_MINUTES", 60)) * time.Minute,
	}
}

// Window returns the activation window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// CreateCooldown returns the creation rate-limit window as a duration.
func (c *Config) CreateCooldown() time.Duration {
	return time.Duration(c.CreateCooldownHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}
