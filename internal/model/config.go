package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Quiz deck modes accepted in configuration.
const (
	QuizModeDue = "due"
	QuizModeAll = "all"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. LEARNTRACK_DATABASE_PATH.
const EnvPrefix = "LEARNTRACK"

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// QuizConfig holds quiz session preferences.
type QuizConfig struct {
	// DefaultMode selects the deck a session starts with ("due" or "all").
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`
}

// ReminderConfig controls the daily refresh job.
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Hour    int  `mapstructure:"hour" yaml:"hour"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls where the TUI writes its debug log.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database   DatabaseConfig `mapstructure:"database" yaml:"database"`
	Quiz       QuizConfig     `mapstructure:"quiz" yaml:"quiz"`
	Reminder   ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
	Display    DisplayConfig  `mapstructure:"display" yaml:"display"`
	Log        LogConfig      `mapstructure:"log" yaml:"log"`
	Categories []string       `mapstructure:"categories" yaml:"categories"`
}

// configDir returns ~/.config/learntrack, falling back to the working
// directory when the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "learntrack")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/learntrack/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/learntrack/learntrack.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "learntrack.db")
	}
	return filepath.Join(home, ".local", "share", "learntrack", "learntrack.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Quiz:     QuizConfig{DefaultMode: QuizModeDue},
		Reminder: ReminderConfig{Enabled: true, Hour: 9},
		Display:  DisplayConfig{Theme: "default"},
		Log:      LogConfig{File: filepath.Join(configDir(), "debug.log")},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. Environment variables
// prefixed with LEARNTRACK_ override file values in both cases.
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv knows which keys exist.
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("quiz.default_mode", def.Quiz.DefaultMode)
	v.SetDefault("reminder.enabled", def.Reminder.Enabled)
	v.SetDefault("reminder.hour", def.Reminder.Hour)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("categories", []string{})

	if err := v.ReadInConfig(); err != nil {
		_, notExist := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notExist && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *AppConfig) Validate() error {
	switch c.Quiz.DefaultMode {
	case QuizModeDue, QuizModeAll:
	default:
		return fmt.Errorf("quiz.default_mode must be %q or %q, got %q",
			QuizModeDue, QuizModeAll, c.Quiz.DefaultMode)
	}
	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 {
		return fmt.Errorf("reminder.hour must be between 0 and 23, got %d", c.Reminder.Hour)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("quiz", cfg.Quiz)
	v.Set("reminder", cfg.Reminder)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("categories", cfg.Categories)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
