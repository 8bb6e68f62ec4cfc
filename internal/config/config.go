package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ClosureRule marks recurring days on which a point is closed (holidays,
// deep-clean days). Reconciliation skips closed days and no partner is
// offered on them.
type ClosureRule struct {
	Point string `yaml:"point" validate:"required"`
	RRule string `yaml:"rrule" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL     string        `yaml:"databaseURL" validate:"required"`
	SpreadsheetID   string        `yaml:"spreadsheetID" validate:"required"`
	CredentialsPath string        `yaml:"credentialsPath" validate:"required"`
	Points          []string      `yaml:"points" validate:"required,min=1"`
	LookaheadDays   int           `yaml:"lookaheadDays,omitempty" validate:"omitempty,min=1"`
	SyncTimeoutSecs int           `yaml:"syncTimeoutSecs,omitempty" validate:"omitempty,min=1"`
	Closures        []ClosureRule `yaml:"closures,omitempty" validate:"dive"`
	Env             string        `yaml:"env,omitempty"`
}

// DefaultLookaheadDays bounds how far ahead swap candidates are listed
const DefaultLookaheadDays = 30

// DefaultSyncTimeoutSecs bounds a single external-spreadsheet call
const DefaultSyncTimeoutSecs = 20

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from baristabot_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.LookaheadDays == 0 {
		cfg.LookaheadDays = DefaultLookaheadDays
	}
	if cfg.SyncTimeoutSecs == 0 {
		cfg.SyncTimeoutSecs = DefaultSyncTimeoutSecs
	}
	if cfg.Env == "" {
		cfg.Env = "prod"
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks closure rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for baristabot_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "baristabot_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
