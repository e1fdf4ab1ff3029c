package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for recon-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8084"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Results store configuration (PostgreSQL). Optional: when Host is
	// empty the engine keeps runs in memory only.
	Results ResultsDBConfig `yaml:"results_db"`

	// Validation defaults applied when a job spec leaves them unset.
	Validation ValidationConfig `yaml:"validation"`
}

// ResultsDBConfig holds the PostgreSQL results store configuration.
type ResultsDBConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:""`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"recon"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"recon_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ValidationConfig holds engine-wide reconciliation defaults.
type ValidationConfig struct {
	// AllowListSpec is the default cross-type compatibility specification,
	// e.g. "int32:int64,decimal(1-9,0):int64". Job specs may override it.
	AllowListSpec string `yaml:"allow_list" env:"VALIDATION_ALLOW_LIST" env-default:""`

	// ExclusionColumns are column names skipped on both sides by default.
	ExclusionColumns []string `yaml:"exclusion_columns" env:"VALIDATION_EXCLUSION_COLUMNS"`
}

// Enabled reports whether a results store is configured.
func (c *ResultsDBConfig) Enabled() bool {
	return c.Host != ""
}

// ConnectionString returns a PostgreSQL connection string for the results store.
func (c *ResultsDBConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load reads configuration from config.yaml with environment variable overrides.
// When no config.yaml exists, environment variables and defaults are used alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	if _, err := os.Stat("config.yaml"); os.IsNotExist(err) {
		return LoadFromEnv(version)
	}

	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv reads configuration from environment variables only, applying
// defaults for everything unset. Used by tests and containerized deploys
// that ship no config file.
func LoadFromEnv(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}
