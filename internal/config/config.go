package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	RawDir    string
	OutputDir string

	SubmitEndpoint  string
	SubmitTimeoutMs int

	// VariantsFile is an optional YAML file that overrides or adds bank
	// variants on top of the built-in ones.
	VariantsFile string
	// DefaultRejectionCode is used for rows without an observation when the
	// operator does not pass one explicitly.
	DefaultRejectionCode string
	RunsListLimit        int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawDir:    getEnv("RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		SubmitEndpoint:  strings.TrimSpace(getEnv("SUBMIT_ENDPOINT", "")),
		SubmitTimeoutMs: getEnvInt("SUBMIT_TIMEOUT_MS", 30000),

		VariantsFile:         getEnv("VARIANTS_FILE", ""),
		DefaultRejectionCode: strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_REJECTION_CODE", ""))),
		RunsListLimit:        getEnvInt("RUNS_LIST_LIMIT", 20),
	}

	return cfg, nil
}

func (c Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutMs) * time.Millisecond
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
