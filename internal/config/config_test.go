package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTmpConfig(t *testing.T, raw string) string {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmp, []byte(raw), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	return tmp
}

func TestLoadConfig_Valid(t *testing.T) {
	ResetConfigForTest()
	tmp := writeTmpConfig(t, `{
		"server": {"host": "localhost", "port": 8080, "subpath": "/news"},
		"database": {"driver": "sqlite", "dsn": "file::memory:"},
		"redis": {"addr": "localhost:6379", "db": 2},
		"images": {"folder": "/srv/images"},
		"summarizer": {"api_url": "http://hf.local/model", "max_input_chars": 100}
	}`)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Images.Folder != "/srv/images" {
		t.Errorf("images folder not loaded, got %q", cfg.Images.Folder)
	}
	if cfg.Summarizer.MaxInputChars != 100 {
		t.Errorf("explicit max_input_chars overwritten, got %d", cfg.Summarizer.MaxInputChars)
	}
	if cfg.Summarizer.MaxLength != 500 || cfg.Summarizer.MinLength != 30 {
		t.Errorf("summarizer defaults not applied: %+v", cfg.Summarizer)
	}
	if GetConfig() != cfg {
		t.Errorf("GetConfig should return the loaded singleton")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfigForTest()
	tmp := writeTmpConfig(t, `{"database": {"dsn": "postgres://u:p@localhost/news"}}`)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected default driver postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Scraper.LinkSelector != "a.open-section" || cfg.Scraper.LinkFilter != "/latest/" {
		t.Errorf("scraper selector defaults not applied: %+v", cfg.Scraper)
	}
	if cfg.Scraper.DateLayout != "January 2, 2006" {
		t.Errorf("unexpected date layout %q", cfg.Scraper.DateLayout)
	}
	if cfg.Redis.CacheTTLMinutes != 15 {
		t.Errorf("expected cache ttl 15, got %d", cfg.Redis.CacheTTLMinutes)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	ResetConfigForTest()
	t.Setenv("DATABASE_DSN", "file:env.db")
	t.Setenv("IMAGE_FOLDER", "/tmp/env-images")
	t.Setenv("HF_API_TOKEN", "secret-token")
	t.Setenv("LOG_LEVEL", "DEBUG")
	tmp := writeTmpConfig(t, `{"database": {"driver": "sqlite"}}`)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.DSN != "file:env.db" {
		t.Errorf("DATABASE_DSN not applied, got %q", cfg.Database.DSN)
	}
	if cfg.Images.Folder != "/tmp/env-images" {
		t.Errorf("IMAGE_FOLDER not applied, got %q", cfg.Images.Folder)
	}
	if cfg.Summarizer.APIToken != "secret-token" {
		t.Errorf("HF_API_TOKEN not applied")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("LOG_LEVEL should be lowercased, got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfigForTest()
	_, err := LoadConfig("no_such_config.json")
	if err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	ResetConfigForTest()
	tmp := writeTmpConfig(t, `{this is not json}`)

	_, err := LoadConfig(tmp)
	if err == nil {
		t.Errorf("expected error for malformed JSON")
	}
}

func TestLoadConfig_MissingDSN(t *testing.T) {
	ResetConfigForTest()
	t.Setenv("DATABASE_DSN", "")
	tmp := writeTmpConfig(t, `{"server": {"port": 9000}}`)

	_, err := LoadConfig(tmp)
	if err == nil {
		t.Errorf("expected error when database dsn is missing")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	c := &Config{}
	c.Database.Driver = "mongo"
	c.Database.DSN = "mongodb://mongo:27017"
	if err := c.Validate(); err == nil {
		t.Errorf("expected error for unsupported driver")
	}
}
