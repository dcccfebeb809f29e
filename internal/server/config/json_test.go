package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseJSON_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"address": ":7070",
		"jwt_access_secret": "json-access",
		"jwt_refresh_secret": "json-refresh",
		"access_token_expiry": "30m",
		"refresh_token_expiry": "14d",
		"blacklist_fail_closed": true
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	orig := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = orig }()

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		t.Fatalf("parseJSON error: %v", err)
	}

	if cfg.Address != ":7070" {
		t.Fatalf("address not overlaid: %q", cfg.Address)
	}
	if cfg.AccessTokenValidityDuration != 30*time.Minute {
		t.Fatalf("access TTL not overlaid: %v", cfg.AccessTokenValidityDuration)
	}
	if cfg.RefreshTokenValidityDuration != 14*24*time.Hour {
		t.Fatalf("refresh TTL not overlaid: %v", cfg.RefreshTokenValidityDuration)
	}
	if !cfg.BlacklistFailClosed {
		t.Fatalf("fail-closed not overlaid")
	}
	// Absent keys keep their defaults.
	if cfg.DatabaseDSN == "" {
		t.Fatalf("absent key cleared the default")
	}
}

func TestParseJSON_NoFileFlag(t *testing.T) {
	orig := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = orig }()

	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg
	if err := parseJSON(cfg); err != nil {
		t.Fatalf("parseJSON error: %v", err)
	}
	if *cfg != before {
		t.Fatalf("config changed without a file: %+v", cfg)
	}
}

func TestParseJSON_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	orig := os.Args
	os.Args = []string{"server", "-config", path}
	defer func() { os.Args = orig }()

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
