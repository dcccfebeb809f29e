package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lifecourse/lifecourse/internal/filex"
	"github.com/lifecourse/lifecourse/internal/timex"
)

// parseEnv overlays environment variables onto cfg. Secrets additionally
// support *_FILE indirection so they can be mounted as files; the file form
// wins when both are set.
func parseEnv(cfg *Config) error {
	if v := os.Getenv("ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}

	var err error
	if cfg.AccessTokenSecret, err = secretEnv("JWT_ACCESS_SECRET", cfg.AccessTokenSecret); err != nil {
		return err
	}
	if cfg.RefreshTokenSecret, err = secretEnv("JWT_REFRESH_SECRET", cfg.RefreshTokenSecret); err != nil {
		return err
	}
	if cfg.EncryptionKey, err = secretEnv("DB_ENCRYPTION_KEY", cfg.EncryptionKey); err != nil {
		return err
	}

	if v := os.Getenv("ACCESS_TOKEN_EXPIRY"); v != "" {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
		}
		cfg.AccessTokenValidityDuration = d
	}
	if v := os.Getenv("REFRESH_TOKEN_EXPIRY"); v != "" {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
		}
		cfg.RefreshTokenValidityDuration = d
	}

	if v := os.Getenv("BLACKLIST_FAIL_CLOSED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLACKLIST_FAIL_CLOSED: %w", err)
		}
		cfg.BlacklistFailClosed = b
	}

	return nil
}

func secretEnv(name, current string) (string, error) {
	if path := os.Getenv(name + "_FILE"); path != "" {
		return filex.ReadSecretFile(path)
	}
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	return current, nil
}
