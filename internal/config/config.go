// Package config assembles service configuration from defaults, an
// optional YAML file, and GCSE_* environment variables, in that order.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/gcsetutor/internal/llm"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Lock       LockConfig       `yaml:"lock"`
	Log        LogConfig        `yaml:"log"`
	Tracing    TracingConfig    `yaml:"tracing"`
	LLM        llm.Config       `yaml:"llm"`
	Tutor      TutorConfig      `yaml:"tutor"`
	Diagnostic DiagnosticConfig `yaml:"diagnostic"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RequestTimeout bounds a turn once its session lock is held.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// LockWait bounds how long a turn queues behind another turn on the
	// same session before it is rejected as busy.
	LockWait        time.Duration `yaml:"lock_wait"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // sqlite, postgres, memory
	// DSN is a file path for sqlite and a URL for postgres.
	DSN string `yaml:"dsn"`
}

// LockConfig selects how same-session turns are serialized.
type LockConfig struct {
	Backend       string        `yaml:"backend"` // local, redis
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode     string `yaml:"mode"` // dev, prod
	Level    string `yaml:"level"`
	Redact   bool   `yaml:"redact"`
	HashSalt string `yaml:"hash_salt"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Exporter    string  `yaml:"exporter"` // none, stdout, otlp
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// TutorConfig tunes the generative tutor.
type TutorConfig struct {
	HistoryLimit int `yaml:"history_limit"`
}

// DiagnosticConfig points at an alternative question bank.
type DiagnosticConfig struct {
	// BankPath overrides the embedded bank when set.
	BankPath string `yaml:"bank_path"`
}

// Backends and exporters accepted by Validate.
const (
	LockLocal = "local"
	LockRedis = "redis"

	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  60 * time.Second,
			LockWait:        5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Lock: LockConfig{
			Backend: LockLocal,
			TTL:     2 * time.Minute,
		},
		Log: LogConfig{
			Mode:   "dev",
			Redact: true,
		},
		Tracing: TracingConfig{
			Exporter:    ExporterNone,
			ServiceName: "gcsetutor",
			SampleRatio: 1,
		},
		LLM: llm.DefaultConfig(),
		Tutor: TutorConfig{
			HistoryLimit: 10,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (if non-empty),
// and the environment. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg)
	discoverLLM(&cfg.LLM)
	return cfg, nil
}

// Parse decodes YAML onto cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// ApplyEnv overlays GCSE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	boolean := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str(&cfg.Server.Addr, "GCSE_ADDR")
	dur(&cfg.Server.RequestTimeout, "GCSE_REQUEST_TIMEOUT")
	dur(&cfg.Server.LockWait, "GCSE_LOCK_WAIT")
	str(&cfg.Server.JWTSecret, "GCSE_JWT_SECRET")
	str(&cfg.Server.JWTIssuer, "GCSE_JWT_ISSUER")
	if v := os.Getenv("GCSE_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	str(&cfg.Store.Backend, "GCSE_STORE_BACKEND")
	str(&cfg.Store.DSN, "GCSE_STORE_DSN")

	str(&cfg.Lock.Backend, "GCSE_LOCK_BACKEND")
	str(&cfg.Lock.RedisAddr, "GCSE_REDIS_ADDR")
	str(&cfg.Lock.RedisPassword, "GCSE_REDIS_PASSWORD")

	str(&cfg.Log.Mode, "GCSE_LOG_MODE")
	str(&cfg.Log.Level, "GCSE_LOG_LEVEL")
	boolean(&cfg.Log.Redact, "GCSE_LOG_REDACT")
	str(&cfg.Log.HashSalt, "GCSE_LOG_HASH_SALT")

	str(&cfg.Tracing.Exporter, "GCSE_TRACING_EXPORTER")
	str(&cfg.Tracing.Endpoint, "GCSE_OTLP_ENDPOINT")

	str(&cfg.Diagnostic.BankPath, "GCSE_DIAGNOSTIC_BANK")

	llm.ApplyEnv(&cfg.LLM)
}

// discoverLLM fills in a provider from the standard vendor key variables
// when the configured provider has no key.
func discoverLLM(cfg *llm.Config) {
	if cfg.HasAPIKey() {
		return
	}
	found, ok := llm.DiscoverConfig()
	if !ok {
		return
	}
	cfg.Provider = found.Provider
	cfg.Anthropic.APIKey = found.Anthropic.APIKey
	cfg.OpenAI.APIKey = found.OpenAI.APIKey
	cfg.Gemini.APIKey = found.Gemini.APIKey
	cfg.OpenRouter.APIKey = found.OpenRouter.APIKey
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []string

	switch c.Store.Backend {
	case "sqlite", "memory":
	case "postgres":
		if c.Store.DSN == "" {
			errs = append(errs, "store.dsn is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}

	switch c.Lock.Backend {
	case LockLocal:
	case LockRedis:
		if c.Lock.RedisAddr == "" {
			errs = append(errs, "lock.redis_addr is required for the redis lock")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown lock backend %q", c.Lock.Backend))
	}

	switch c.Tracing.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, "tracing.endpoint is required for the otlp exporter")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown tracing exporter %q", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, "tracing.sample_ratio must be in [0, 1]")
	}

	if c.Server.RequestTimeout < 0 {
		errs = append(errs, "server.request_timeout must not be negative")
	}
	if c.Server.LockWait < 0 {
		errs = append(errs, "server.lock_wait must not be negative")
	}
	if c.Tutor.HistoryLimit < 0 {
		errs = append(errs, "tutor.history_limit must not be negative")
	}

	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// ValidateServer adds the checks that only matter for the HTTP server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Server.JWTSecret) < 32 {
		return fmt.Errorf("server.jwt_secret (GCSE_JWT_SECRET) must be at least 32 bytes")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
