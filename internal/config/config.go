// Package config reads the process configuration from the environment,
// loading an optional .env file first.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir  string
	DBFile   string
	PrefFile string
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	dataDir := os.Getenv("QUICKNOTE_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".quicknote")
	}

	return Config{
		DataDir:  dataDir,
		DBFile:   envOr("QUICKNOTE_DB_FILE", filepath.Join(dataDir, "notes.db")),
		PrefFile: envOr("QUICKNOTE_PREF_FILE", filepath.Join(dataDir, "prefs.db")),
		LogLevel: envOr("QUICKNOTE_LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
