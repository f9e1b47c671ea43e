package config

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:            "local",
		LogLevel:               "info",
		UploadDir:              "uploads",
		UploadSweepInterval:    time.Hour,
		MaxUploadBytes:         1 << 20,
		DBMinConns:             1,
		DBMaxConns:             4,
		TranslationChunkChars:  4500,
		UpstreamRateLimit:      5,
		UpstreamTimeout:        time.Minute,
		CorrectionModel:        "t5-small",
		GrammarEndpoint:        "https://api.languagetool.org/v2",
		GrammarEnabled:         true,
		GrammarDefaultLanguage: "en-US",
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"empty upload dir":    func(c *Config) { c.UploadDir = " " },
		"negative retention":  func(c *Config) { c.UploadRetention = -time.Second },
		"zero sweep interval": func(c *Config) { c.UploadRetention = time.Hour; c.UploadSweepInterval = 0 },
		"zero upload limit":   func(c *Config) { c.MaxUploadBytes = 0 },
		"min above max":       func(c *Config) { c.DBMinConns = 5 },
		"tiny chunk":          func(c *Config) { c.TranslationChunkChars = 10 },
		"zero rate":           func(c *Config) { c.UpstreamRateLimit = 0 },
		"grammar no endpoint": func(c *Config) { c.GrammarEndpoint = "" },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestScratchRoot(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if got := cfg.ScratchRoot(); got != filepath.Join("uploads", ".scratch") {
		t.Fatalf("unexpected default scratch root: %q", got)
	}
	cfg.ScratchDir = "/tmp/pdfdesk"
	if got := cfg.ScratchRoot(); got != "/tmp/pdfdesk" {
		t.Fatalf("unexpected scratch root override: %q", got)
	}
}

func TestListParsing(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DetectLanguages = " EN, pt ,en,, es"
	got := cfg.DetectLanguagesList()
	if len(got) != 3 || got[0] != "en" || got[1] != "pt" || got[2] != "es" {
		t.Fatalf("unexpected detect languages: %#v", got)
	}

	cfg.CORSAllowedOrigins = "https://a.example, https://a.example,https://b.example"
	origins := cfg.CORSAllowedOriginsList()
	if len(origins) != 2 {
		t.Fatalf("unexpected origins: %#v", origins)
	}
}
