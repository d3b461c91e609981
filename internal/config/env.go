package config

import (
	"fmt"
	"os"
	"time"
)

// ApplyEnvOverrides overrides fields of cfg from environment variables.
//
// Environment variables supported:
// - PORT, LOG_LEVEL, LOG_FILE, GIN_MODE, DB_PATH
// - IPAPI_URL, LOOKUP_TIMEOUT (duration), PAGE_IDLE_TIMEOUT (duration)
// - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, TO_EMAIL
// - ADMIN_USERNAME, ADMIN_PASSWORD
func ApplyEnvOverrides(cfg *Config) error {
	setString("PORT", &cfg.Port)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("LOG_FILE", &cfg.LogFile)
	setString("GIN_MODE", &cfg.GinMode)
	setString("DB_PATH", &cfg.DBPath)
	setString("IPAPI_URL", &cfg.IPAPIURL)

	setString("SMTP_HOST", &cfg.SMTP.Host)
	setString("SMTP_PORT", &cfg.SMTP.Port)
	setString("SMTP_USER", &cfg.SMTP.User)
	setString("SMTP_PASS", &cfg.SMTP.Pass)
	setString("TO_EMAIL", &cfg.SMTP.To)

	setString("ADMIN_USERNAME", &cfg.Admin.Username)
	setString("ADMIN_PASSWORD", &cfg.Admin.Password)

	if err := setDurationEnv("LOOKUP_TIMEOUT", &cfg.LookupTimeout); err != nil {
		return err
	}
	return setDurationEnv("PAGE_IDLE_TIMEOUT", &cfg.PageIdleTimeout)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDurationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
