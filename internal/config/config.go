package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

type ScraperConfig struct {
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	Concurrency       int     `json:"concurrency"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	MaxPageSizeMB     int     `json:"max_page_size_mb"`

	// CSS selectors for the category and article pages
	LinkSelector      string `json:"link_selector"`
	LinkFilter        string `json:"link_filter"`
	TitleSelector     string `json:"title_selector"`
	DateSelector      string `json:"date_selector"`
	DateLayout        string `json:"date_layout"`
	ParagraphSelector string `json:"paragraph_selector"`
	ImageSelector     string `json:"image_selector"`
}

type SummarizerConfig struct {
	APIURL            string `json:"api_url"`
	APIToken          string `json:"api_token"`
	MaxInputChars     int    `json:"max_input_chars"`
	MaxLength         int    `json:"max_length"`
	MinLength         int    `json:"min_length"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	BreakerFailures   int    `json:"breaker_failures"`
	BreakerCooldown   int    `json:"breaker_cooldown_seconds"`
	FallbackSentences int    `json:"fallback_sentences"`
}

type Config struct {
	Server struct {
		Host    string `json:"host"`
		Port    int    `json:"port"`
		Subpath string `json:"subpath"`
	} `json:"server"`
	Database struct {
		Driver string `json:"driver"` // "postgres" or "sqlite"
		DSN    string `json:"dsn"`
	} `json:"database"`
	Redis struct {
		Addr            string `json:"addr"`
		Password        string `json:"password"`
		DB              int    `json:"db"`
		CacheTTLMinutes int    `json:"cache_ttl_minutes"`
	} `json:"redis"`
	Images struct {
		Folder string `json:"folder"`
	} `json:"images"`
	Scraper    ScraperConfig    `json:"scraper"`
	Summarizer SummarizerConfig `json:"summarizer"`
	Log        struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the JSON config from disk once, fills defaults and applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		c.ApplyDefaults()
		c.ApplyEnv()
		if err := c.Validate(); err != nil {
			cfgErr = err
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}

// ApplyDefaults fills every zero field with the value the Geo News deployment
// runs with.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Redis.CacheTTLMinutes == 0 {
		c.Redis.CacheTTLMinutes = 15
	}
	if c.Images.Folder == "" {
		c.Images.Folder = "./images"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	s := &c.Scraper
	if s.UserAgent == "" {
		s.UserAgent = "Mozilla/5.0"
	}
	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = 30
	}
	if s.Concurrency == 0 {
		s.Concurrency = 4
	}
	if s.RequestsPerSecond == 0 {
		s.RequestsPerSecond = 5
	}
	if s.MaxPageSizeMB == 0 {
		s.MaxPageSizeMB = 10
	}
	if s.LinkSelector == "" {
		s.LinkSelector = "a.open-section"
	}
	if s.LinkFilter == "" {
		s.LinkFilter = "/latest/"
	}
	if s.TitleSelector == "" {
		s.TitleSelector = ".heading_H h1"
	}
	if s.DateSelector == "" {
		s.DateSelector = ".post-date-time"
	}
	if s.DateLayout == "" {
		s.DateLayout = "January 2, 2006"
	}
	if s.ParagraphSelector == "" {
		s.ParagraphSelector = ".content-area p"
	}
	if s.ImageSelector == "" {
		s.ImageSelector = ".medium-insert-images img"
	}

	m := &c.Summarizer
	if m.MaxInputChars == 0 {
		m.MaxInputChars = 5000 // ~1024 tokens
	}
	if m.MaxLength == 0 {
		m.MaxLength = 500
	}
	if m.MinLength == 0 {
		m.MinLength = 30
	}
	if m.TimeoutSeconds == 0 {
		m.TimeoutSeconds = 120
	}
	if m.BreakerFailures == 0 {
		m.BreakerFailures = 3
	}
	if m.BreakerCooldown == 0 {
		m.BreakerCooldown = 60
	}
	if m.FallbackSentences == 0 {
		m.FallbackSentences = 4
	}
}

// ApplyEnv lets deployment secrets and paths come from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("IMAGE_FOLDER"); v != "" {
		c.Images.Folder = v
	}
	if v := os.Getenv("HF_API_URL"); v != "" {
		c.Summarizer.APIURL = v
	}
	if v := os.Getenv("HF_API_TOKEN"); v != "" {
		c.Summarizer.APIToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set in config or DATABASE_DSN")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}
