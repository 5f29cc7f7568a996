package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration unmarshals from YAML strings like "30m" or "1h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full application configuration. Values come from an optional
// YAML file and are overridden by SAFESCRIBE_* environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// JWTConfig holds token signing settings. Secret is mandatory; a missing
// signing key is a startup failure, never a per-request one.
type JWTConfig struct {
	Secret   string   `yaml:"secret"`
	Issuer   string   `yaml:"issuer"`
	Audience string   `yaml:"audience"`
	TokenTTL Duration `yaml:"token_ttl"`
}

// RedisConfig selects the shared revocation store. An empty Addr keeps the
// process-local in-memory blacklist.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// RateLimitConfig is the per-IP token bucket applied to login attempts.
type RateLimitConfig struct {
	Burst     int `yaml:"burst"`
	PerSecond int `yaml:"per_second"`
}

// ErrMissingSecret is returned when no JWT signing key is configured.
var ErrMissingSecret = errors.New("config: jwt signing secret is not configured")

// Load reads the YAML file at path (if path is non-empty), applies environment
// overrides, fills defaults and validates.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, ErrMissingSecret
	}
	if cfg.JWT.TokenTTL <= 0 {
		return Config{}, errors.New("config: jwt token_ttl must be positive")
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		JWT: JWTConfig{
			Issuer:   "safescribe",
			Audience: "safescribe-api",
			TokenTTL: Duration(time.Hour),
		},
		Logger: LoggerConfig{Level: "info"},
		RateLimit: RateLimitConfig{
			Burst:     10,
			PerSecond: 5,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "SAFESCRIBE_ADDR")
	setString(&cfg.JWT.Secret, "SAFESCRIBE_JWT_SECRET")
	setString(&cfg.JWT.Issuer, "SAFESCRIBE_JWT_ISSUER")
	setString(&cfg.JWT.Audience, "SAFESCRIBE_JWT_AUDIENCE")
	setDuration(&cfg.JWT.TokenTTL, "SAFESCRIBE_JWT_TTL")
	setString(&cfg.Redis.Addr, "SAFESCRIBE_REDIS_ADDR")
	setString(&cfg.Redis.Password, "SAFESCRIBE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SAFESCRIBE_REDIS_DB")
	setString(&cfg.Logger.Level, "SAFESCRIBE_LOG_LEVEL")
	setInt(&cfg.RateLimit.Burst, "SAFESCRIBE_RATE_BURST")
	setInt(&cfg.RateLimit.PerSecond, "SAFESCRIBE_RATE_PER_SECOND")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = Duration(d)
	}
}
