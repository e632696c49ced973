package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGracePeriod     = 30 * 24 * time.Hour
	DefaultMaxMatches      = 10
	DefaultHTTPAddr        = ":8080"
	DefaultRedisTTL        = 15 * time.Minute
	configFilePrefix       = "matcher_config"
	envDatabaseURL         = "DATABASE_URL"
	envRedisURL            = "REDIS_URL"
	envSheetsSpreadsheetID = "MATCHES_SPREADSHEET_ID"
)

// RedisConfig enables the WFA status cache when URL is set
type RedisConfig struct {
	URL string        `yaml:"url,omitempty" validate:"omitempty,url"`
	TTL time.Duration `yaml:"ttl,omitempty" validate:"gte=0"`
}

// HTTPConfig configures the serve command
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty" validate:"required"`
}

// SheetsConfig configures where publishMatches writes
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// GracePeriod is how far ahead of a WFA end date a profile counts as urgent
	GracePeriod time.Duration `yaml:"gracePeriod" validate:"gte=0"`

	// DefaultMaxMatches is used when a caller doesn't pass a max
	DefaultMaxMatches int `yaml:"defaultMaxMatches" validate:"min=1"`

	// RandomSeed makes the sequence of tie-break shuffles reproducible; 0 seeds from the clock
	RandomSeed uint64 `yaml:"randomSeed,omitempty"`

	// MatchSchedule is an RRULE driving the watch command
	MatchSchedule string `yaml:"matchSchedule,omitempty"`

	Redis  RedisConfig  `yaml:"redis,omitempty"`
	HTTP   HTTPConfig   `yaml:"http,omitempty"`
	Sheets SheetsConfig `yaml:"sheets,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Defaults returns a config with every optional field at its default value
func Defaults() Config {
	return Config{
		GracePeriod:       DefaultGracePeriod,
		DefaultMaxMatches: DefaultMaxMatches,
		Redis:             RedisConfig{TTL: DefaultRedisTTL},
		HTTP:              HTTPConfig{Addr: DefaultHTTPAddr},
	}
}

// LoadWithEnv loads .env files and the environment's config file.
// For example, env="test" loads ".env.test", ".env" and "matcher_config.test.yaml".
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Environment variables override values from the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.MatchSchedule != "" {
		if _, err := rrule.StrToRRule(cfg.MatchSchedule); err != nil {
			return fmt.Errorf("invalid rrule in matchSchedule: %w", err)
		}
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv(envSheetsSpreadsheetID); v != "" {
		cfg.Sheets.SpreadsheetID = v
	}
}

// loadDotEnv loads env-specific then shared .env files; missing files are skipped.
// Variables already set in the process environment win.
func loadDotEnv(env string) error {
	files := []string{".env"}
	if env != "" {
		files = []string{".env." + env, ".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", f, err)
	}
	return nil
}

// findConfigFile searches for the environment's config file
func findConfigFile(env string) (string, error) {
	return locateFile(envFileName(configFilePrefix, env, ".yaml"))
}

// envFileName builds "<prefix>.<env><ext>", or "<prefix><ext>" without an env
func envFileName(prefix, env, ext string) string {
	if env == "" {
		return prefix + ext
	}
	return prefix + "." + env + ext
}

// locateFile looks for a file in the current directory, then the home directory
func locateFile(fileName string) (string, error) {
	if _, err := os.Stat(fileName); err == nil {
		return fileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, fileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", fileName)
}
