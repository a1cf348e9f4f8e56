// Package config loads server configuration from the environment.
package config

import (
	"os"
	"strings"

	"github.com/evcraddock/newsroom/internal/db"
)

// Server holds API server configuration.
type Server struct {
	Addr        string
	DBPath      string
	DevMode     bool
	CORSOrigins []string
}

// FromEnv creates a Server config from environment variables.
func FromEnv() (Server, error) {
	dbPath := os.Getenv("NR_DB")
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultPath()
		if err != nil {
			return Server{}, err
		}
	}

	return Server{
		Addr:        envOrDefault("NR_ADDR", ":8080"),
		DBPath:      dbPath,
		DevMode:     os.Getenv("NR_DEV_MODE") == "true",
		CORSOrigins: splitList(os.Getenv("NR_CORS_ORIGINS")),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
