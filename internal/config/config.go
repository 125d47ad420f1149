package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port          string   `yaml:"port"`
	PublicBaseURL string   `yaml:"public_base_url"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// AdminConfig contains back-office access settings
type AdminConfig struct {
	Password string `yaml:"password"`
}

// UploadsConfig contains file storage settings
type UploadsConfig struct {
	Dir       string          `yaml:"dir"`
	Subdir    string          `yaml:"subdir"`
	ImageHost ImageHostConfig `yaml:"image_host"`
}

// ImageHostConfig contains remote image hosting credentials.
// The remote backend is used only when both values are set.
type ImageHostConfig struct {
	AccountID string `yaml:"account_id"`
	APIToken  string `yaml:"api_token"`
	BaseURL   string `yaml:"base_url"`
}

// SweepConfig contains orphaned-upload sweep settings
type SweepConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	DryRun           bool   `yaml:"dry_run"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Type: "mysql",
		},
		Uploads: UploadsConfig{
			Subdir: "properties",
		},
		Sweep: SweepConfig{
			Enabled:          false,
			DailyRunTime:     "03:00",
			RetentionDays:    7,
			MaxDeletionCount: 1000,
			DryRun:           false,
		},
	}
}

// LoadConfig loads configuration from a YAML file, merged over defaults.
// A missing file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// HasImageHost reports whether remote image hosting is fully configured.
func (u *UploadsConfig) HasImageHost() bool {
	return u.ImageHost.AccountID != "" && u.ImageHost.APIToken != ""
}

// RoutePrefix returns the root-relative URL prefix local uploads are served
// from. A leading "public/" in the upload dir is not part of the URL.
func (u *UploadsConfig) RoutePrefix() string {
	base := strings.TrimPrefix(u.Dir, "public/")
	base = strings.Trim(base, "/")
	if base == "" {
		base = "uploads"
	}
	return "/" + base
}
