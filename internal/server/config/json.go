package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lifecourse/lifecourse/internal/flagx"
	"github.com/lifecourse/lifecourse/internal/timex"
)

// jsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for lifetime fields, which parses both string
// values such as "15m" or "7d" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type jsonConfig struct {
	Address                      *string         `json:"address"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	AccessTokenSecret            *string         `json:"jwt_access_secret"`
	RefreshTokenSecret           *string         `json:"jwt_refresh_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_expiry"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_expiry"`
	EncryptionKey                *string         `json:"db_encryption_key"`
	BlacklistFailClosed          *bool           `json:"blacklist_fail_closed"`
	AppEnv                       *string         `json:"app_env"`
}

// parseJSON loads configuration values from the JSON file named by the
// -c/-config flags, if any. Absent keys leave the current value in place.
func parseJSON(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if c.Address != nil {
		cfg.Address = *c.Address
	}
	if c.DatabaseDSN != nil {
		cfg.DatabaseDSN = *c.DatabaseDSN
	}
	if c.AccessTokenSecret != nil {
		cfg.AccessTokenSecret = *c.AccessTokenSecret
	}
	if c.RefreshTokenSecret != nil {
		cfg.RefreshTokenSecret = *c.RefreshTokenSecret
	}
	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.EncryptionKey != nil {
		cfg.EncryptionKey = *c.EncryptionKey
	}
	if c.BlacklistFailClosed != nil {
		cfg.BlacklistFailClosed = *c.BlacklistFailClosed
	}
	if c.AppEnv != nil {
		cfg.AppEnv = *c.AppEnv
	}

	return nil
}
