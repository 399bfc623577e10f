package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/topupbot/core/config"
	coredatabase "github.com/m3rciful/topupbot/core/database"
)

// Config aggregates core settings with the bot's database configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads the YAML config file, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeDatabase(&cfg.Database); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeDatabase(db *coredatabase.Config) error {
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 10
	}
	if db.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if db.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	return nil
}
