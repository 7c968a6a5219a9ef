package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"fanout-api/internal/config"
)

// loadDotEnv loads variables from the file named by FANOUT_ENV_FILE, or .env
// when unset. A missing file is not an error and existing process variables
// are never overridden.
func loadDotEnv() error {
	path := os.Getenv(config.EnvPrefix + "ENV_FILE")
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
