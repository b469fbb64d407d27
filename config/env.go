package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds the JSONTRANS_* environment overrides.
type Env struct {
	SourceLang string   `env:"JSONTRANS_SOURCE_LANG"`
	Languages  []string `env:"JSONTRANS_LANGUAGES" envSeparator:","`
	BatchSize  int      `env:"JSONTRANS_BATCH_SIZE"`
	Provider   string   `env:"JSONTRANS_PROVIDER"`
	Model      string   `env:"JSONTRANS_MODEL"`
	BaseURL    string   `env:"JSONTRANS_BASE_URL"`
	APIKey     string   `env:"JSONTRANS_API_KEY"`
	Proxy      string   `env:"JSONTRANS_PROXY"`
}

// LoadEnv reads a .env file from rootDir, if present, and parses the
// environment. Variables already set in the process take precedence over
// the .env file.
func LoadEnv(rootDir string) (*Env, error) {
	if rootDir != "" {
		path := filepath.Join(rootDir, ".env")
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &e, nil
}
