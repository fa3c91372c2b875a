package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `server: irc.example.net
port: 6697
nick: speedbot
nick_pass: hunter2
server_pass: letmein
channels:
  - "#one"
  - "#two"
auto_rejoin: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server != "irc.example.net" || cfg.Port != 6697 || cfg.Nick != "speedbot" {
		t.Errorf("Unexpected connection settings: %+v", cfg)
	}
	if cfg.NickPass != "hunter2" || cfg.ServerPass != "letmein" {
		t.Errorf("Unexpected passwords: nick_pass=%q server_pass=%q", cfg.NickPass, cfg.ServerPass)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "#one" || cfg.Channels[1] != "#two" {
		t.Errorf("Unexpected channels: %v", cfg.Channels)
	}
	if cfg.AutoRejoin {
		t.Error("auto_rejoin should be false")
	}
	// defaults fill the rest
	if cfg.LogLevel != "info" || cfg.DataDir != "./data" {
		t.Errorf("Defaults not applied: log_level=%q data_dir=%q", cfg.LogLevel, cfg.DataDir)
	}
	if cfg.Addr() != "irc.example.net:6697" {
		t.Errorf("Unexpected addr %q", cfg.Addr())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("nick: filebot\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IRCBOT_NICK", "envbot")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Nick != "envbot" {
		t.Errorf("Expected env override, got %q", cfg.Nick)
	}
}

func TestLoadMissingWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Nick != Default().Nick {
		t.Errorf("Expected default nick, got %q", cfg.Nick)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written default failed: %v", err)
	}
	if again.Port != Default().Port {
		t.Errorf("Expected port %d, got %d", Default().Port, again.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Nick = "bad nick"
	if err := cfg.Validate(); err == nil {
		t.Error("nick with space should be rejected")
	}
	cfg = Default()
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should be rejected")
	}
}
