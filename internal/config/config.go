package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the portfolio server.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	GinMode  string `yaml:"gin_mode"`
	DBPath   string `yaml:"db_path"`

	// IPAPIURL is the base of the IP lookup service.
	IPAPIURL      string        `yaml:"ipapi_url"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`

	// PageIdleTimeout is how long a visitor's page instance lives without requests.
	PageIdleTimeout time.Duration `yaml:"page_idle_timeout"`

	SMTP  SMTPConfig  `yaml:"smtp"`
	Admin AdminConfig `yaml:"admin"`
	Map   MapConfig   `yaml:"map"`

	TypewriterWords []string `yaml:"typewriter_words"`
}

// SMTPConfig enables real delivery of the contact form when User and Pass are set.
type SMTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	To   string `yaml:"to"`
}

// Enabled reports whether credentials are configured.
func (s SMTPConfig) Enabled() bool {
	return s.User != "" && s.Pass != ""
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MapConfig positions the embedded map widget.
type MapConfig struct {
	Lat   float64 `yaml:"lat"`
	Lng   float64 `yaml:"lng"`
	Zoom  int     `yaml:"zoom"`
	Popup string  `yaml:"popup"`
	Tiles string  `yaml:"tiles"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:            "8080",
		LogLevel:        "info",
		GinMode:         "release",
		DBPath:          "portfolio.db",
		IPAPIURL:        "https://ipapi.co",
		LookupTimeout:   5 * time.Second,
		PageIdleTimeout: 30 * time.Minute,
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		Map: MapConfig{
			Lat:   40.4168,
			Lng:   -3.7038,
			Zoom:  6,
			Popup: "<b>Madrid, Spain</b><br>Estoy aqui!",
			Tiles: "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		},
		TypewriterWords: []string{"Rest", "Hacker", "Developer", "Security"},
	}
}

// Load reads the YAML file at path on top of the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.PageIdleTimeout <= 0 {
		return fmt.Errorf("page_idle_timeout must be positive, got %s", c.PageIdleTimeout)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup_timeout must be positive, got %s", c.LookupTimeout)
	}
	if len(c.TypewriterWords) == 0 {
		return fmt.Errorf("typewriter_words must not be empty")
	}
	return nil
}
