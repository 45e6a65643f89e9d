package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys
const (
	KeyPort             = "PORT"
	KeyAllowedOrigins   = "ALLOWED_ORIGINS"
	KeyExtractorTimeout = "EXTRACTOR_TIMEOUT"
	KeyExtractor        = "EXTRACTOR"
	KeyYtDlpPath        = "YTDLP_PATH"
	KeyRateLimitRPS     = "RATE_LIMIT_RPS"
	KeyRateLimitBurst   = "RATE_LIMIT_BURST"
)

// Extractor backends
const (
	ExtractorYouTube = "youtube"
	ExtractorYtDlp   = "ytdlp"
)

// Default values
const (
	DefaultPort             = 5000
	DefaultExtractorTimeout = 30 * time.Second
	DefaultExtractor        = ExtractorYouTube
	DefaultYtDlpPath        = "yt-dlp"
	DefaultRateLimitBurst   = 10
)

type Config struct {
	Port             int
	AllowedOrigins   []string
	ExtractorTimeout time.Duration
	Extractor        string
	YtDlpPath        string

	// RateLimitRPS of zero turns admission control off.
	RateLimitRPS   float64
	RateLimitBurst int
}

func Default() *Config {
	return &Config{
		Port:             DefaultPort,
		AllowedOrigins:   []string{"*"},
		ExtractorTimeout: DefaultExtractorTimeout,
		Extractor:        DefaultExtractor,
		YtDlpPath:        DefaultYtDlpPath,
		RateLimitBurst:   DefaultRateLimitBurst,
	}
}

// Load reads an optional .env file and then the process environment.
// The boolean reports whether a .env file was found.
func Load() (*Config, bool, error) {
	foundEnv := godotenv.Load() == nil
	cfg, err := FromEnv(os.LookupEnv)
	return cfg, foundEnv, err
}

// FromEnv builds a Config from lookup, falling back to defaults.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if v, ok := lookup(KeyPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyPort, err)
		}
		cfg.Port = port
	}

	if v, ok := lookup(KeyAllowedOrigins); ok && strings.TrimSpace(v) != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if v, ok := lookup(KeyExtractorTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyExtractorTimeout, err)
		}
		cfg.ExtractorTimeout = d
	}

	if v, ok := lookup(KeyExtractor); ok && v != "" {
		cfg.Extractor = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup(KeyYtDlpPath); ok && v != "" {
		cfg.YtDlpPath = v
	}

	if v, ok := lookup(KeyRateLimitRPS); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyRateLimitRPS, err)
		}
		cfg.RateLimitRPS = rps
	}

	if v, ok := lookup(KeyRateLimitBurst); ok && v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyRateLimitBurst, err)
		}
		cfg.RateLimitBurst = burst
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ExtractorTimeout < 0 {
		return fmt.Errorf("extractor timeout must not be negative")
	}
	switch c.Extractor {
	case ExtractorYouTube, ExtractorYtDlp:
	default:
		return fmt.Errorf("unknown extractor %q (want %q or %q)", c.Extractor, ExtractorYouTube, ExtractorYtDlp)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}
	return nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
