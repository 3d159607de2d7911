package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tgienger/smartplanner/internal/planner"
)

const (
	AppName               = "smartplanner"
	DefaultConfigFileName = "config.toml"
	DefaultAPIURL         = "http://localhost:8000"
	DefaultTimeout        = "10s"

	// APIURLEnv overrides api_url from the file.
	APIURLEnv = "SPLAN_API_URL"
)

// Config is the terminal client's configuration file.
type Config struct {
	APIURL      string `toml:"api_url"`
	WeekStart   string `toml:"week_start"`
	DefaultSort string `toml:"default_sort"`
	Timeout     string `toml:"timeout"`
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the location of config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFileName), nil
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Empty fields fall back to their defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	def := defaultConfig()
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if cfg.WeekStart == "" {
		cfg.WeekStart = def.WeekStart
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = def.DefaultSort
	}
	if cfg.Timeout == "" {
		cfg.Timeout = def.Timeout
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// Validate checks the fields that have a fixed vocabulary.
func (c Config) Validate() error {
	if _, err := c.WeekStartDay(); err != nil {
		return err
	}
	if _, err := c.Sort(); err != nil {
		return err
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// WeekStartDay is the first column of the calendar.
func (c Config) WeekStartDay() (time.Weekday, error) {
	return planner.ParseWeekStart(c.WeekStart)
}

// Sort is the initial ordering of the filter view.
func (c Config) Sort() (planner.SortOption, error) {
	return planner.ParseSortOption(c.DefaultSort)
}

// RequestTimeout bounds every repository call.
func (c Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return d, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(APIURLEnv); v != "" {
		c.APIURL = v
	}
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		WeekStart:   "monday",
		DefaultSort: string(planner.DefaultSortOption),
		Timeout:     DefaultTimeout,
	}
}
