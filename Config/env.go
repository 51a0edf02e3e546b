package Config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything read from the environment at startup.
type Settings struct {
	Port            string
	DBPath          string
	FallbackCompany string
	BatchTTL        time.Duration
}

var settings Settings

// Load reads .env (if present) and populates the settings with defaults for
// anything missing. Safe to call once from main before anything else.
func Load() Settings {
	// Missing .env is fine in production, the service runs off real env vars.
	_ = godotenv.Load(".env")

	settings = Settings{
		Port:            getEnv("PORT", "3001"),
		DBPath:          getEnv("DB_PATH", "database.db"),
		FallbackCompany: getEnv("FALLBACK_COMPANY", "Fast & Express"),
		BatchTTL:        getDurationEnv("BATCH_TTL_HOURS", 72) * time.Hour,
	}
	return settings
}

// Get returns the settings loaded by Load.
func Get() Settings {
	return settings
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
