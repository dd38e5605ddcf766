package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Durations are strings such as "90s".
type fileConfig struct {
	DataPath       string   `yaml:"data_path" toml:"data_path"`
	DatabaseURL    string   `yaml:"database_url" toml:"database_url"`
	RedisURL       string   `yaml:"redis_url" toml:"redis_url"`
	ServerPort     string   `yaml:"server_port" toml:"server_port"`
	UserAgent      string   `yaml:"user_agent" toml:"user_agent"`
	Timeout        string   `yaml:"timeout" toml:"timeout"`
	TopN           int      `yaml:"top_n" toml:"top_n"`
	CacheTTL       string   `yaml:"cache_ttl" toml:"cache_ttl"`
	Watch          *bool    `yaml:"watch" toml:"watch"`
	LogLevel       string   `yaml:"log_level" toml:"log_level"`
	Environment    string   `yaml:"environment" toml:"environment"`
	MigrationsPath string   `yaml:"migrations_path" toml:"migrations_path"`
	CORSOrigins    []string `yaml:"cors_origins" toml:"cors_origins"`
	RateLimit      *float64 `yaml:"rate_limit" toml:"rate_limit"`
	RateBurst      *int     `yaml:"rate_burst" toml:"rate_burst"`
}

// LoadFromFile loads config from a YAML (.yaml, .yml) or TOML (.toml) file.
// Environment variables override file values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	c := Default()
	if err := f.apply(c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.fillDataPath()
	return c, nil
}

func (f *fileConfig) apply(c *Config) error {
	set := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	set(f.DataPath, &c.DataPath)
	set(f.DatabaseURL, &c.DatabaseURL)
	set(f.RedisURL, &c.RedisURL)
	set(f.ServerPort, &c.ServerPort)
	set(f.UserAgent, &c.UserAgent)
	set(f.LogLevel, &c.LogLevel)
	set(f.Environment, &c.Environment)
	set(f.MigrationsPath, &c.MigrationsPath)

	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if f.CacheTTL != "" {
		d, err := time.ParseDuration(f.CacheTTL)
		if err != nil {
			return fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	if f.TopN != 0 {
		c.TopN = f.TopN
	}
	if f.Watch != nil {
		c.Watch = *f.Watch
	}
	if len(f.CORSOrigins) > 0 {
		c.CORSOrigins = f.CORSOrigins
	}
	if f.RateLimit != nil {
		c.RateLimit = *f.RateLimit
	}
	if f.RateBurst != nil {
		c.RateBurst = *f.RateBurst
	}
	return nil
}
