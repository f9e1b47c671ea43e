package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	UploadDir           string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	ScratchDir          string        `envconfig:"SCRATCH_DIR" default:""`
	UploadRetention     time.Duration `envconfig:"UPLOAD_RETENTION" default:"0"`
	UploadSweepInterval time.Duration `envconfig:"UPLOAD_SWEEP_INTERVAL" default:"1h"`
	MaxUploadBytes      int64         `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	CORSAllowedOrigins  string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"4"`

	TranslationProvider     string        `envconfig:"TRANSLATION_PROVIDER" default:"google"`
	TranslationEndpoint     string        `envconfig:"TRANSLATION_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	TranslationModel        string        `envconfig:"TRANSLATION_MODEL" default:"tencent/HY-MT1.5-7B"`
	GoogleTranslateEndpoint string        `envconfig:"GOOGLE_TRANSLATE_ENDPOINT" default:"https://translate.googleapis.com"`
	TranslationChunkChars   int           `envconfig:"TRANSLATION_CHUNK_CHARS" default:"4500"`
	UpstreamRateLimit       float64       `envconfig:"UPSTREAM_RATE_LIMIT" default:"5"`
	UpstreamTimeout         time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"60s"`

	CorrectionEndpoint string `envconfig:"CORRECTION_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	CorrectionModel    string `envconfig:"CORRECTION_MODEL" default:"t5-small"`
	CorrectionAPIKey   string `envconfig:"CORRECTION_API_KEY" default:""`

	GrammarEndpoint        string `envconfig:"GRAMMAR_ENDPOINT" default:"https://api.languagetool.org/v2"`
	GrammarEnabled         bool   `envconfig:"GRAMMAR_ENABLED" default:"true"`
	GrammarDefaultLanguage string `envconfig:"GRAMMAR_DEFAULT_LANGUAGE" default:"en-US"`

	DetectLanguages string `envconfig:"DETECT_LANGUAGES" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UploadDir) == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.UploadRetention < 0 {
		return fmt.Errorf("UPLOAD_RETENTION must be >= 0")
	}
	if c.UploadRetention > 0 && c.UploadSweepInterval <= 0 {
		return fmt.Errorf("UPLOAD_SWEEP_INTERVAL must be > 0 when UPLOAD_RETENTION is set")
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be >= 1")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.TranslationChunkChars < 100 {
		return fmt.Errorf("TRANSLATION_CHUNK_CHARS must be >= 100")
	}
	if c.UpstreamRateLimit <= 0 {
		return fmt.Errorf("UPSTREAM_RATE_LIMIT must be > 0")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.CorrectionModel) == "" {
		return fmt.Errorf("CORRECTION_MODEL is required")
	}
	if c.GrammarEnabled && strings.TrimSpace(c.GrammarEndpoint) == "" {
		return fmt.Errorf("GRAMMAR_ENDPOINT is required when GRAMMAR_ENABLED is true")
	}
	return nil
}

// ScratchRoot returns the directory used for per-request scratch files.
func (c *Config) ScratchRoot() string {
	if dir := strings.TrimSpace(c.ScratchDir); dir != "" {
		return dir
	}
	return filepath.Join(c.UploadDir, ".scratch")
}

// HasDatabase reports whether the upload ledger is configured.
func (c *Config) HasDatabase() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

func (c *Config) CORSAllowedOriginsList() []string {
	return splitList(c.CORSAllowedOrigins, false)
}

// DetectLanguagesList returns the lowercased ISO 639-1 codes detection is restricted to.
func (c *Config) DetectLanguagesList() []string {
	return splitList(c.DetectLanguages, true)
}

func splitList(raw string, lower bool) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
