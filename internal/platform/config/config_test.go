package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"keyloop/internal/platform/config"
)

func TestNewUsesDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "keyloop.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.Synth != config.SynthLog || cfg.PollInterval != 50*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewOverlaysYAMLFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	body := "db_path: practice.db\nlog_level: debug\ntick_interval: 2s\nlisten: 0.0.0.0:9000\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "practice.db") {
		t.Fatalf("relative db path should resolve under data dir, got %s", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" || cfg.TickInterval != 2*time.Second || cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("yaml overlay not applied: %+v", cfg)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Fatalf("unset fields must keep defaults, got %s", cfg.PollInterval)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty data dir should fail")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("synth: plugin\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(dir); err == nil {
		t.Fatalf("plugin synth without binary should fail")
	}
	other := t.TempDir()
	if err := os.WriteFile(filepath.Join(other, config.FileName), []byte("synth: theremin\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(other); err == nil {
		t.Fatalf("unknown synth should fail")
	}
}

func TestSaveRoundTripsThroughNew(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Synth = config.SynthMIDI
	cfg.MIDIPort = "IAC Driver"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Synth != config.SynthMIDI || loaded.MIDIPort != "IAC Driver" {
		t.Fatalf("saved fields not reloaded: %+v", loaded)
	}
}

func TestAllowedOriginsOverlay(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	body := "allowed_origins:\n  - https://practice.example\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://practice.example" {
		t.Fatalf("origins not replaced: %v", cfg.AllowedOrigins)
	}
	if got := config.Default(dir).AllowedOrigins; len(got) != 2 {
		t.Fatalf("unexpected default origins: %v", got)
	}
}
