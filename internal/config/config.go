package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingDataSource is returned when neither a data file nor a database is configured.
var ErrMissingDataSource = errors.New("no data source: set TUBESTATS_DATA or DATABASE_URL")

// Defaults.
const (
	DefaultDataPath       = "youtube_channels.csv"
	DefaultServerPort     = "8080"
	DefaultUserAgent      = "tubestats/1.0"
	DefaultTimeout        = 30 * time.Second
	DefaultTopN           = 5
	DefaultCacheTTL       = 2 * time.Minute
	DefaultLogLevel       = "info"
	DefaultMigrationsPath = "migrations"
	DefaultRateLimit      = 20
	DefaultRateBurst      = 40
)

// Config holds application configuration. Load reads it from the
// environment and LoadFromFile from a YAML or TOML file.
type Config struct {
	DataPath       string
	DatabaseURL    string
	RedisURL       string
	ServerPort     string
	UserAgent      string
	Timeout        time.Duration
	TopN           int
	CacheTTL       time.Duration
	Watch          bool
	LogLevel       string
	Environment    string
	MigrationsPath string
	CORSOrigins    []string
	RateLimit      float64
	RateBurst      int
}

// Default returns a Config with every default applied and no data source.
func Default() *Config {
	return &Config{
		ServerPort:     DefaultServerPort,
		UserAgent:      DefaultUserAgent,
		Timeout:        DefaultTimeout,
		TopN:           DefaultTopN,
		CacheTTL:       DefaultCacheTTL,
		LogLevel:       DefaultLogLevel,
		Environment:    "development",
		MigrationsPath: DefaultMigrationsPath,
		CORSOrigins:    []string{"*"},
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}
}

// Load builds config from environment variables.
// If neither TUBESTATS_DATA nor DATABASE_URL is set, Load first applies
// .env.local and .env from the current directory and the executable's
// directory. Without any data source the default CSV path is used.
func Load() (*Config, error) {
	if os.Getenv("TUBESTATS_DATA") == "" && os.Getenv("DATABASE_URL") == "" {
		loadEnvFiles()
	}
	c := Default()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.fillDataPath()
	return c, nil
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate checks ranges and that a data source is configured.
func (c *Config) Validate() error {
	if c.DataPath == "" && c.DatabaseURL == "" {
		return ErrMissingDataSource
	}
	return validate(c)
}

// fillDataPath falls back to the default CSV when no source is set.
func (c *Config) fillDataPath() {
	if c.DataPath == "" && c.DatabaseURL == "" {
		c.DataPath = DefaultDataPath
	}
}

// applyEnv overrides fields with the environment variables that are set.
func (c *Config) applyEnv() error {
	setString := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	setString("TUBESTATS_DATA", &c.DataPath)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("REDIS_URL", &c.RedisURL)
	setString("SERVER_PORT", &c.ServerPort)
	setString("FETCHER_USER_AGENT", &c.UserAgent)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("ENV", &c.Environment)
	setString("MIGRATIONS_PATH", &c.MigrationsPath)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	var errs []error
	if v := os.Getenv("FETCHER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("FETCHER_TIMEOUT", err))
		c.Timeout = d
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("CACHE_TTL", err))
		c.CacheTTL = d
	}
	if v := os.Getenv("TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("TOP_N", err))
		c.TopN = n
	}
	if v := os.Getenv("TUBESTATS_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("TUBESTATS_WATCH", err))
		c.Watch = b
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr("RATE_LIMIT", err))
		c.RateLimit = f
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("RATE_BURST", err))
		c.RateBurst = n
	}
	return errors.Join(errs...)
}

func envErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
