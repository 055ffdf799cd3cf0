package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads KEY=value pairs from path into the process environment.
// Variables already set in the environment win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}
