package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

// envFiles are tried in order; every file found is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env/.env.local from dir. Existing process environment
// variables are never overwritten.
func loadEnvFiles(dir string) error {
	loaded := 0
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no .env file found in %s", dir)
	}
	return nil
}
