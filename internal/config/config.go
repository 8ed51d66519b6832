package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address      string        `yaml:"address"`
		Port         string        `yaml:"port" validate:"required,numeric"`
		ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
		WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	} `yaml:"http"`

	// Remote catalog API
	Upstream struct {
		BaseURL string        `yaml:"base_url" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"upstream"`

	// Response cache settings
	Cache struct {
		TTL        time.Duration `yaml:"ttl" validate:"gt=0"`
		MaxEntries int           `yaml:"max_entries" validate:"min=0"`
	} `yaml:"cache"`

	// Circuit breaker guarding the upstream
	Breaker struct {
		FailureThreshold int           `yaml:"failure_threshold" validate:"min=1"`
		Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
		HalfOpenRequests int           `yaml:"half_open_requests" validate:"min=1"`
	} `yaml:"breaker"`

	// Library database
	DB struct {
		Path string `yaml:"path" validate:"required"`
	} `yaml:"db"`

	Log struct {
		Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
	} `yaml:"log"`

	// Image resizing proxy
	Image struct {
		ProxyURL  string `yaml:"proxy_url" validate:"required,url"`
		OriginURL string `yaml:"origin_url" validate:"required,url"`
	} `yaml:"image"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = ""
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 60 * time.Second

	cfg.Upstream.BaseURL = "https://phimapi.com"
	cfg.Upstream.Timeout = 30 * time.Second

	cfg.Cache.TTL = 10 * time.Minute
	cfg.Cache.MaxEntries = 0 // unbounded

	cfg.Breaker.FailureThreshold = 5
	cfg.Breaker.Timeout = 30 * time.Second
	cfg.Breaker.HalfOpenRequests = 1

	cfg.DB.Path = "binhmovie.db"

	cfg.Log.Level = "INFO"

	cfg.Image.ProxyURL = "https://images.weserv.nl/"
	cfg.Image.OriginURL = "https://phimimg.com/"

	return cfg
}

// Validate checks field constraints and returns every violation in one error.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}

// SlogLevel converts the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads CONFIG_FILE (default config.yaml) if it exists, applies environment
// variable overrides and validates the result.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)
	p.parseString("UPSTREAM_BASE_URL", &cfg.Upstream.BaseURL)
	p.parseDuration("UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout)
	p.parseDuration("CACHE_TTL", &cfg.Cache.TTL)
	p.parseInt("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries, 0)
	p.parseInt("BREAKER_FAILURE_THRESHOLD", &cfg.Breaker.FailureThreshold, 1)
	p.parseDuration("BREAKER_TIMEOUT", &cfg.Breaker.Timeout)
	p.parseInt("BREAKER_HALF_OPEN_REQUESTS", &cfg.Breaker.HalfOpenRequests, 1)
	p.parseString("DB_PATH", &cfg.DB.Path)
	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, "DEBUG", "INFO", "WARN", "ERROR")
	p.parseString("IMAGE_PROXY_URL", &cfg.Image.ProxyURL)
	p.parseString("IMAGE_ORIGIN_URL", &cfg.Image.OriginURL)

	if len(p.errors) > 0 {
		return fmt.Errorf("invalid environment:\n  - %s", strings.Join(p.errors, "\n  - "))
	}
	return nil
}

// envParser collects every malformed variable instead of stopping at the first.
type envParser struct {
	errors []string
}

func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's positive
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '10m', etc.)", envName))
		return
	}
	if duration <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable no smaller than min
func (p *envParser) parseInt(envName string, target *int, min int) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be a valid integer", envName))
		return
	}
	if intVal < min {
		p.errors = append(p.errors, fmt.Sprintf("%s must be at least %d", envName, min))
		return
	}

	*target = intVal
}

// parseEnum accepts one of values, case-insensitively
func (p *envParser) parseEnum(envName string, target *string, values ...string) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	normalized := strings.ToUpper(val)
	for _, v := range values {
		if v == normalized {
			*target = normalized
			return
		}
	}
	p.errors = append(p.errors, fmt.Sprintf("%s must be one of: %s", envName, strings.Join(values, ", ")))
}
