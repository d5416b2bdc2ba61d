package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one calendar feed subscription.
type FeedConfig struct {
	// URL is the feed endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for caching and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// LocationConfig is one weather forecast point.
type LocationConfig struct {
	Label string  `yaml:"label" json:"label"`
	Lat   float64 `yaml:"lat" json:"lat"`
	Lon   float64 `yaml:"lon" json:"lon"`
}

// EpigraphConfig is the quote block shown on the first page of a day.
type EpigraphConfig struct {
	Quote  string `yaml:"quote" json:"quote"`
	Author string `yaml:"author" json:"author"`
}

// DeviceConfig describes the tablet the finished document is pushed to.
type DeviceConfig struct {
	// Hosts are candidate addresses tried in order (USB address first).
	Hosts []string `yaml:"hosts" json:"hosts"`
	User  string   `yaml:"user" json:"user"`
	// SSHKeyPath is the private key used for upload.
	SSHKeyPath string `yaml:"ssh_key_path" json:"ssh_key_path"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the status server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the status server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Asia/Singapore").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is the cron schedule for dashboard regeneration.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Feeds are the subscribed calendar sources.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// MaxItemsPerPage bounds combined events+tasks per page.
	MaxItemsPerPage int `yaml:"max_items_per_page" json:"max_items_per_page"`

	// ChecklistToday / ChecklistTomorrow are the fixed per-day task lists.
	ChecklistToday    []string `yaml:"checklist_today" json:"checklist_today"`
	ChecklistTomorrow []string `yaml:"checklist_tomorrow" json:"checklist_tomorrow"`

	// Locations are the weather forecast points.
	Locations []LocationConfig `yaml:"locations" json:"locations"`

	Epigraph         EpigraphConfig `yaml:"epigraph" json:"epigraph"`
	TomorrowEpigraph EpigraphConfig `yaml:"tomorrow_epigraph" json:"tomorrow_epigraph"`

	// OutputDir receives a local copy of every rendered document.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CacheDir holds the feed HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Device DeviceConfig `yaml:"device" json:"device"`

	// BasicAuth, if non-nil, protects all status endpoints except /healthz.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "Asia/Singapore",
		RefreshCron:     "0 5 * * *",
		Feeds:           []FeedConfig{},
		MaxItemsPerPage: 6,
		ChecklistToday: []string{
			"Top 3 Things",
			"Devotions, SFAD, Journal",
			"Meals & Expenses",
			"Pegboard Compline",
		},
		ChecklistTomorrow: []string{
			"Top 3 Things",
			"Plan for SAFVC",
			"Zero Strikes Virgin Active",
			"All AMP Staged",
		},
		Locations: []LocationConfig{},
		Epigraph: EpigraphConfig{
			Quote: "The LORD is my strength, and my song, and is become my salvation.",
		},
		TomorrowEpigraph: EpigraphConfig{
			Quote: "They shall run and not be weary; they shall walk and not faint.",
		},
		OutputDir: "./var/output",
		CacheDir:  "./var/feed-cache",
		Device: DeviceConfig{
			Hosts: []string{"10.11.99.1"},
			User:  "root",
		},
	}
}

// Normalize fills in missing or zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	if c.MaxItemsPerPage <= 0 {
		c.MaxItemsPerPage = def.MaxItemsPerPage
	}
	if c.ChecklistToday == nil {
		c.ChecklistToday = def.ChecklistToday
	}
	if c.ChecklistTomorrow == nil {
		c.ChecklistTomorrow = def.ChecklistTomorrow
	}
	if c.Locations == nil {
		c.Locations = []LocationConfig{}
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if len(c.Device.Hosts) == 0 {
		c.Device.Hosts = def.Device.Hosts
	}
	if c.Device.User == "" {
		c.Device.User = def.Device.User
	}
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: the default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory as needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dashboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
