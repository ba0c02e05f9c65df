package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a .env file into the environment when one exists.
// Missing files are fine; deployed environments set variables directly.
func LoadEnv() {
	_ = godotenv.Load()
}

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
