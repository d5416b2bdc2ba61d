package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timezone != "Asia/Singapore" {
		t.Errorf("timezone %q", cfg.Timezone)
	}
	if cfg.MaxItemsPerPage != 6 {
		t.Errorf("max items %d", cfg.MaxItemsPerPage)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions %o, want 600", perm)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := DefaultConfig()
	want.Listen = "0.0.0.0:9999"
	want.Feeds = []FeedConfig{{ID: "personal", URL: "https://example.org/cal.ics", Name: "Personal"}}
	want.Locations = []LocationConfig{{Label: "Home", Lat: 1.29, Lon: 103.85}}
	want.Device.Hosts = []string{"10.11.99.1", "192.168.1.50"}
	want.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}

	if err := want.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Listen != want.Listen {
		t.Errorf("listen %q", got.Listen)
	}
	if len(got.Feeds) != 1 || got.Feeds[0].ID != "personal" {
		t.Errorf("feeds %+v", got.Feeds)
	}
	if len(got.Locations) != 1 || got.Locations[0].Label != "Home" {
		t.Errorf("locations %+v", got.Locations)
	}
	if len(got.Device.Hosts) != 2 {
		t.Errorf("hosts %v", got.Device.Hosts)
	}
	if got.BasicAuth == nil || got.BasicAuth.Username != "u" {
		t.Errorf("basic auth %+v", got.BasicAuth)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	if cfg.Listen == "" || cfg.Timezone == "" || cfg.RefreshCron == "" {
		t.Errorf("zero fields survived: %+v", cfg)
	}
	if cfg.MaxItemsPerPage != 6 {
		t.Errorf("max items %d", cfg.MaxItemsPerPage)
	}
	if len(cfg.ChecklistToday) == 0 || len(cfg.ChecklistTomorrow) == 0 {
		t.Error("checklists not defaulted")
	}
	if len(cfg.Device.Hosts) == 0 || cfg.Device.User == "" {
		t.Errorf("device not defaulted: %+v", cfg.Device)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{MaxItemsPerPage: 8, ChecklistToday: []string{}}
	cfg.Normalize()

	if cfg.MaxItemsPerPage != 8 {
		t.Errorf("explicit max items overwritten: %d", cfg.MaxItemsPerPage)
	}
	// An explicitly empty checklist is a choice, not a missing value.
	if len(cfg.ChecklistToday) != 0 {
		t.Errorf("explicit empty checklist overwritten: %v", cfg.ChecklistToday)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
