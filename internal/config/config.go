// ABOUTME: Forage configuration file and environment overrides
// ABOUTME: Holds API, camera, compass and season settings with defaults

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/compass"
	"github.com/harper/forage/internal/hit"
	"github.com/harper/forage/internal/navigation"
	"github.com/harper/forage/internal/season"
)

// Duration is a time.Duration stored as a string like "30s" in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "30s" style strings or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", b)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// View is an initial map view.
type View struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// Follow holds the 3D follow mode camera parameters.
type Follow struct {
	Zoom         float64  `json:"zoom"`
	Pitch        float64  `json:"pitch"`
	FlyDuration  Duration `json:"fly_duration"`
	EaseDuration Duration `json:"ease_duration"`
	ExitDuration Duration `json:"exit_duration"`
	CenterZoom   float64  `json:"center_zoom"`
}

// Config stores forage configuration.
type Config struct {
	APIURL         string   `json:"api_url"`
	RequestTimeout Duration `json:"request_timeout"`
	StaleTime      Duration `json:"stale_time"`
	Limit          int      `json:"limit"`

	InitialView      View    `json:"initial_view"`
	CompassSmoothing float64 `json:"compass_smoothing"`
	Follow           Follow  `json:"follow"`
	ClickTolerance   float64 `json:"click_tolerance"`

	// SeasonOverrides is an optional YAML file merged over the built-in
	// season table. Supports ~ expansion.
	SeasonOverrides string `json:"season_overrides,omitempty"`
	LogLevel        string `json:"log_level"`
}

// Default returns the stock configuration.
func Default() *Config {
	nav := navigation.DefaultSettings()
	return &Config{
		APIURL:         api.DefaultBaseURL,
		RequestTimeout: Duration(api.DefaultTimeout),
		StaleTime:      Duration(api.DefaultStaleTime),
		Limit:          1000,
		InitialView: View{
			Lat:  33.7701,
			Lng:  -118.1937,
			Zoom: 12,
		},
		CompassSmoothing: compass.DefaultSmoothing,
		Follow: Follow{
			Zoom:         nav.FollowZoom,
			Pitch:        nav.FollowPitch,
			FlyDuration:  Duration(nav.FlyDuration),
			EaseDuration: Duration(nav.FollowDuration),
			ExitDuration: Duration(nav.ExitDuration),
			CenterZoom:   nav.CenterZoom,
		},
		ClickTolerance: hit.DefaultTolerance,
		LogLevel:       "info",
	}
}

// envOverrides are the settings that can come from the environment.
type envOverrides struct {
	APIURL          string        `env:"FORAGE_API_URL"`
	StaleTime       time.Duration `env:"FORAGE_STALE_TIME"`
	Limit           int           `env:"FORAGE_LIMIT"`
	SeasonOverrides string        `env:"FORAGE_SEASON_OVERRIDES"`
	LogLevel        string        `env:"FORAGE_LOG_LEVEL"`
}

// ApplyEnv overrides fields from FORAGE_* variables. environ is used
// instead of the process environment when non-nil.
func (c *Config) ApplyEnv(environ map[string]string) error {
	var o envOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.Parse(&o, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.StaleTime > 0 {
		c.StaleTime = Duration(o.StaleTime)
	}
	if o.Limit > 0 {
		c.Limit = o.Limit
	}
	if o.SeasonOverrides != "" {
		c.SeasonOverrides = o.SeasonOverrides
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	return nil
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.CompassSmoothing <= 0 || c.CompassSmoothing > 1 {
		return fmt.Errorf("compass_smoothing must be in (0, 1], got %v", c.CompassSmoothing)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NavigationSettings converts the follow settings for the controller.
func (c *Config) NavigationSettings() navigation.Settings {
	s := navigation.DefaultSettings()
	s.FollowZoom = c.Follow.Zoom
	s.FollowPitch = c.Follow.Pitch
	s.FlyDuration = time.Duration(c.Follow.FlyDuration)
	s.FollowDuration = time.Duration(c.Follow.EaseDuration)
	s.ExitDuration = time.Duration(c.Follow.ExitDuration)
	s.CenterZoom = c.Follow.CenterZoom
	return s
}

// APIOptions returns client options for the configured timeouts.
func (c *Config) APIOptions() []api.Option {
	return []api.Option{
		api.WithStaleTime(time.Duration(c.StaleTime)),
		api.WithHTTPClient(&http.Client{Timeout: time.Duration(c.RequestTimeout)}),
	}
}

// SeasonTable returns the built-in table merged with the override file.
func (c *Config) SeasonTable() (season.Table, error) {
	table := season.DefaultTable()
	if c.SeasonOverrides == "" {
		return table, nil
	}
	f, err := os.Open(ExpandPath(c.SeasonOverrides))
	if err != nil {
		return nil, fmt.Errorf("open season overrides: %w", err)
	}
	defer f.Close()
	overrides, err := season.LoadOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("load season overrides: %w", err)
	}
	return table.Merge(overrides), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "forage", "config.json")
}

// Load reads config from disk, writing the defaults on first run, then
// applies environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path atomically.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
