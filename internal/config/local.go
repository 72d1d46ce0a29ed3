package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for the coursework CLI
type LocalConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Events  EventsConfig  `yaml:"events"`
}

// StorageConfig selects the backing store
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"-"` // Loaded from secrets.yaml
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// EventsConfig holds event publishing settings
type EventsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RabbitMQURL string `yaml:"-"` // Loaded from secrets.yaml
}

// SecretsConfig holds connection strings loaded from secrets.yaml
type SecretsConfig struct {
	DatabaseURL string `yaml:"database_url,omitempty"`
	RabbitMQURL string `yaml:"rabbitmq_url,omitempty"`
}

// CourseworkDir returns the path to ~/.coursework
func CourseworkDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".coursework"), nil
}

// EnsureCourseworkDir creates ~/.coursework and subdirectories if they don't
// exist
func EnsureCourseworkDir() (string, error) {
	dir, err := CourseworkDir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "data", "logs"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode. The SQLite
// path is relative to ~/.coursework unless absolute.
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: filepath.Join("data", "coursework.db"),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ResolveSQLitePath returns the absolute SQLite path for dir
func (c *LocalConfig) ResolveSQLitePath(dir string) string {
	if filepath.IsAbs(c.Storage.SQLitePath) {
		return c.Storage.SQLitePath
	}
	return filepath.Join(dir, c.Storage.SQLitePath)
}

// LoadLocalConfig loads configuration from ~/.coursework/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := CourseworkDir()
	if err != nil {
		return nil, err
	}

	cfg := DefaultLocalConfig()

	configPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// loadSecrets loads connection strings from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	data, err := os.ReadFile(secretsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Storage.DatabaseURL = secrets.DatabaseURL
	cfg.Events.RabbitMQURL = secrets.RabbitMQURL
	return nil
}

// SaveLocalConfig saves configuration to ~/.coursework/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureCourseworkDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets saves connection strings to ~/.coursework/secrets.yaml
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureCourseworkDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}
