// Package config handles configuration management for superstore-etl.
// Configuration is loaded from a config file, environment variables, and CLI
// flags. Flags take precedence over environment variables, which take
// precedence over the config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for superstore-etl.
type Config struct {
	// Connection is a full PostgreSQL connection string. When empty, one is
	// assembled from the Database fields.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Database holds individual connection parameters.
	Database DatabaseConfig `mapstructure:"database"`

	// Source describes the input file.
	Source SourceConfig `mapstructure:"source"`

	// Load holds batch sizes for the fact loaders.
	Load LoadConfig `mapstructure:"load"`

	// Export holds configuration for the export subcommand.
	Export ExportConfig `mapstructure:"export"`
}

// DatabaseConfig holds connection parameters for the warehouse database.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Script is the path to an external DDL script. When empty, the
	// embedded schema is used.
	Script string `mapstructure:"script"`
}

// SourceConfig describes the input file for the pipeline.
type SourceConfig struct {
	// File is the path to the delimited input file.
	File string `mapstructure:"file"`

	// Encoding is the text encoding of the input file
	// (windows-1252 or utf-8).
	Encoding string `mapstructure:"encoding"`
}

// LoadConfig holds batch sizes for fact table loading.
type LoadConfig struct {
	// ItemBatchSize is the insert batch size for the item fact table.
	ItemBatchSize int `mapstructure:"item_batch_size"`

	// OrderBatchSize is the insert batch size for the orders fact table.
	OrderBatchSize int `mapstructure:"order_batch_size"`

	// MonthlyBatchSize is the insert batch size for the monthly fact tables.
	MonthlyBatchSize int `mapstructure:"monthly_batch_size"`
}

// ExportConfig holds configuration for spreadsheet export.
type ExportConfig struct {
	// File is the output workbook path. Defaults to <database>_export.xlsx.
	File string `mapstructure:"file"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
		},
		Source: SourceConfig{
			File:     "Sample - Superstore.csv",
			Encoding: "windows-1252",
		},
		Load: LoadConfig{
			ItemBatchSize:    500,
			OrderBatchSize:   200,
			MonthlyBatchSize: 50,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./superstore-etl.yaml
// 3. ~/.config/superstore-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("superstore-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "superstore-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Environment contract: connection parameters and the DDL script path
	// come from the environment when not set elsewhere.
	bindings := map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.name":     "DB_NAME",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.script":   "DATABASE_SCRIPT",
		"source.file":       "SOURCE_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// ConnString returns the PostgreSQL connection string, assembling one from
// the individual database parameters if no full string was configured.
func (c *Config) ConnString() string {
	if c.Connection != "" {
		return c.Connection
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.User != "" {
		if c.Database.Password != "" {
			u.User = url.UserPassword(c.Database.User, c.Database.Password)
		} else {
			u.User = url.User(c.Database.User)
		}
	}
	return u.String()
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" && c.Database.Name == "" {
		return fmt.Errorf("database connection is required (connection string or DB_NAME)")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Source.File == "" {
		return fmt.Errorf("source file is required")
	}
	if c.Source.Encoding != "windows-1252" && c.Source.Encoding != "utf-8" {
		return fmt.Errorf("unsupported source encoding: %s", c.Source.Encoding)
	}
	if c.Load.ItemBatchSize < 1 || c.Load.OrderBatchSize < 1 || c.Load.MonthlyBatchSize < 1 {
		return fmt.Errorf("batch sizes must be at least 1")
	}
	return nil
}
