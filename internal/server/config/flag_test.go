package config

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_Overrides(t *testing.T) {
	orig := os.Args
	os.Args = []string{"server", "-a", ":6060", "-t", "20m", "-e", "production"}
	defer func() { os.Args = orig }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	if cfg.Address != ":6060" {
		t.Fatalf("address not overridden: %q", cfg.Address)
	}
	if cfg.AccessTokenValidityDuration != 20*time.Minute {
		t.Fatalf("access TTL not overridden: %v", cfg.AccessTokenValidityDuration)
	}
	if cfg.AppEnv != EnvProduction {
		t.Fatalf("env not overridden: %q", cfg.AppEnv)
	}
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	orig := os.Args
	os.Args = []string{"server", "-unknown", "x", "-d", "postgres://elsewhere/db"}
	defer func() { os.Args = orig }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	if cfg.DatabaseDSN != "postgres://elsewhere/db" {
		t.Fatalf("own flag lost: %q", cfg.DatabaseDSN)
	}
}
