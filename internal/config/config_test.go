package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != defaultTimezone || cfg.WatchDebounceMs != defaultWatchDebounce {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestLoadNormalizesAndResolves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
timezone: Asia/Seoul
highlight_red: [exam]
calendars:
  - name: Work
    path: work.ics
  - id: home
    path: /abs/home.ics
    color: "#00aa00"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Calendars) != 2 {
		t.Fatalf("calendars = %d, want 2", len(cfg.Calendars))
	}
	if got := cfg.Calendars[0]; got.ID != "cal1" || got.Path != filepath.Join(dir, "work.ics") {
		t.Errorf("calendar[0] = %+v", got)
	}
	if got := cfg.Calendars[1]; got.ID != "home" || got.Path != "/abs/home.ics" || got.Color != "#00aa00" {
		t.Errorf("calendar[1] = %+v", got)
	}
	if cfg.DefaultColor != defaultEventColor || cfg.HighlightColor != defaultHighlightColor {
		t.Errorf("colors = %q/%q, want defaults", cfg.DefaultColor, cfg.HighlightColor)
	}
	if len(cfg.HighlightRed) != 1 || cfg.HighlightRed[0] != "exam" {
		t.Errorf("HighlightRed = %v, want [exam]", cfg.HighlightRed)
	}
	if cfg.WatchDebounce() != defaultWatchDebounce*time.Millisecond {
		t.Errorf("WatchDebounce = %v", cfg.WatchDebounce())
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("calendars: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load error = nil, want YAML error")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("Load(\"\") error = nil")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	cfg.Calendars = append(cfg.Calendars, CalendarConfig{ID: "a", Path: "/tmp/a.ics"})

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Timezone != "Europe/Berlin" || len(got.Calendars) != 1 || got.Calendars[0].Path != "/tmp/a.ics" {
		t.Fatalf("got = %+v", got)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("Location = %v, %v, want UTC", loc, err)
	}
	cfg.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Fatal("Location error = nil for bad zone")
	}
}
