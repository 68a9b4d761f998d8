// Package config loads registry settings from a YAML file and lets
// environment variables override individual keys.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// PathEnv names the variable that points at a config file.
	PathEnv = "REGISTRY_CONFIG"
	// EnvPrefix prefixes environment overrides, e.g. REGISTRY_HTTP_PORT.
	EnvPrefix = "REGISTRY"
)

// Journal drivers.
const (
	JournalNone     = ""
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// DefaultPath is where the service looks for its config when PathEnv is unset.
var DefaultPath = filepath.Join("internal", "registry", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort       int      `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	HTTPPort       int      `yaml:"HTTP_PORT" envconfig:"HTTP_PORT"`
	RateLimit      int      `yaml:"RATE_LIMIT" envconfig:"RATE_LIMIT"`
	KafkaBrokers   []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic          string   `yaml:"TOPIC" envconfig:"TOPIC"`
	ConsumerGroup  string   `yaml:"CONSUMER_GROUP" envconfig:"CONSUMER_GROUP"`
	JournalDriver  string   `yaml:"JOURNAL_DRIVER" envconfig:"JOURNAL_DRIVER"`
	JournalDSN     string   `yaml:"JOURNAL_DSN" envconfig:"JOURNAL_DSN"`
	DBHost         string   `yaml:"DB_HOST" envconfig:"DB_HOST"`
	DBPort         int      `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBUser         string   `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword     string   `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName         string   `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBSSLMode      string   `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`
	LogDevelopment bool     `yaml:"LOG_DEVELOPMENT" envconfig:"LOG_DEVELOPMENT"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		GRPCPort:      50051,
		HTTPPort:      8080,
		Topic:         "registry-events",
		ConsumerGroup: "registry-journal",
		DBPort:        5432,
		DBSSLMode:     "disable",
	}
}

// Load reads the file named by REGISTRY_CONFIG, or DefaultPath, and applies
// environment overrides. A missing default file is not an error.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(PathEnv)
	if !explicit {
		path = DefaultPath
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a YAML file on top of Default.
func LoadFile(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// DirectJournal reports whether the registry itself writes the journal.
// With Kafka configured the journal consumer is the only writer.
func (c *Config) DirectJournal() bool {
	return c.JournalDriver != JournalNone && len(c.KafkaBrokers) == 0
}

// Validate reports the first setting that would keep the service from starting.
func (c *Config) Validate() error {
	switch {
	case c.GRPCPort <= 0 || c.HTTPPort <= 0:
		return errors.New("GRPC_PORT and HTTP_PORT must be positive")
	case c.GRPCPort == c.HTTPPort:
		return errors.New("GRPC_PORT and HTTP_PORT must differ")
	case c.RateLimit < 0:
		return errors.New("RATE_LIMIT must not be negative")
	case len(c.KafkaBrokers) > 0 && c.Topic == "":
		return errors.New("TOPIC is required when KAFKA_BROKERS is set")
	}

	switch c.JournalDriver {
	case JournalNone:
	case JournalSQLite:
		if c.JournalDSN == "" {
			return errors.New("JOURNAL_DSN is required for the sqlite journal")
		}
	case JournalPostgres:
		if c.DBHost == "" {
			return errors.New("DB_HOST is required for the postgres journal")
		}
	default:
		return fmt.Errorf("unknown JOURNAL_DRIVER %q", c.JournalDriver)
	}
	return nil
}
