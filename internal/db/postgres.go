package db

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"icmasure/internal/config"
	"icmasure/internal/logging"
)

var DB *sql.DB

func InitDB() {
	// Config from environment.
	// Precedence: DATABASE_URL > POSTGRES_DSN > assembled from parts.
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_DSN")
	}
	if dsn == "" {
		host := config.Getenv("POSTGRES_HOST", "127.0.0.1")
		port := config.Getenv("POSTGRES_PORT", "5432")
		user := config.Getenv("POSTGRES_USER", "postgres")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := config.Getenv("POSTGRES_DB", "icmasure")
		sslm := config.Getenv("POSTGRES_SSLMODE", "disable")

		// lib/pq key=value format; never log the password
		parts := []string{
			"host=" + host,
			"port=" + port,
			"user=" + user,
			"dbname=" + name,
			"sslmode=" + sslm,
		}
		if pass != "" {
			parts = append(parts, "password="+pass)
		}
		dsn = strings.Join(parts, " ")
	}

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		logging.L().Fatalw("db open failed", "err", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(30 * time.Minute)
	DB.SetConnMaxIdleTime(5 * time.Minute)

	// Ping with a timeout so a dead database fails the boot fast.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.PingContext(ctx); err != nil {
		logging.L().Fatalw("db ping failed", "err", err)
	}

	logSafeDSN()
}

func logSafeDSN() {
	// Log only the destination, never secrets.
	if os.Getenv("DATABASE_URL") != "" {
		logging.L().Infow("db connected", "source", "DATABASE_URL")
		return
	}
	logging.L().Infow("db connected",
		"host", config.Getenv("POSTGRES_HOST", "127.0.0.1"),
		"user", config.Getenv("POSTGRES_USER", "postgres"),
		"db", config.Getenv("POSTGRES_DB", "icmasure"),
	)
}
