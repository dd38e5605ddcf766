package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/voyagen/tubestats/internal/validation"
)

// rules mirrors the Config fields that have range constraints.
type rules struct {
	Port      int     `json:"server_port" validate:"gte=1,lte=65535"`
	TopN      int     `json:"top_n" validate:"gte=1,lte=100"`
	Timeout   int64   `json:"timeout" validate:"gt=0"`
	CacheTTL  int64   `json:"cache_ttl" validate:"gte=0"`
	LogLevel  string  `json:"log_level" validate:"oneof=debug info warn warning error"`
	RedisURL  string  `json:"redis_url" validate:"omitempty,url"`
	RateLimit float64 `json:"rate_limit" validate:"gte=0"`
	RateBurst int     `json:"rate_burst" validate:"gte=0"`
}

func validate(c *Config) error {
	port, _ := strconv.Atoi(c.ServerPort)
	r := rules{
		Port:      port,
		TopN:      c.TopN,
		Timeout:   int64(c.Timeout),
		CacheTTL:  int64(c.CacheTTL),
		LogLevel:  strings.ToLower(c.LogLevel),
		RedisURL:  c.RedisURL,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
	}
	if err := validation.New().Validate(r); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
