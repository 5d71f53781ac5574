package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Load reads .env if present. A missing file is fine: in docker the
// environment comes from the orchestrator, not a file.
func Load(log *zap.SugaredLogger) {
	if err := godotenv.Load(); err != nil {
		log.Debugw("no .env file loaded", "err", err)
	}
}

// Getenv returns the value of k or def when unset/empty.
func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Addr builds the listen address from HOST/PORT.
func Addr() string {
	return Getenv("HOST", "127.0.0.1") + ":" + Getenv("PORT", "8080")
}

// VenueAddress is the free-text address geocoded for the venue page.
func VenueAddress() string {
	return Getenv("VENUE_ADDRESS", "Universitas Jenderal Soedirman, Purwokerto, Indonesia")
}
