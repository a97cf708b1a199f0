package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("http address = %q", cfg.HTTPAddress)
	}
	if cfg.DatabaseDSN != "" {
		t.Fatalf("database dsn = %q, want empty default", cfg.DatabaseDSN)
	}
	if cfg.ReconnectDelay != 3*time.Second {
		t.Fatalf("reconnect delay = %v, want 3s", cfg.ReconnectDelay)
	}
	if cfg.RefetchEvery != 5*time.Second {
		t.Fatalf("refetch interval = %v, want 5s", cfg.RefetchEvery)
	}
	if cfg.ChimeDuration != 800*time.Millisecond {
		t.Fatalf("chime duration = %v, want 800ms", cfg.ChimeDuration)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANTRIAN_SERVER_URL", "http://10.0.0.5:9000")
	t.Setenv("ANTRIAN_LOG_LEVEL", "debug")
	t.Setenv("ANTRIAN_CHANNEL_RECONNECT_DELAY", "10s")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.5:9000" {
		t.Fatalf("server url = %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.ReconnectDelay != 10*time.Second {
		t.Fatalf("reconnect delay = %v, want 10s", cfg.ReconnectDelay)
	}
}

func TestValidateRejectsBlankServerURL(t *testing.T) {
	t.Setenv("ANTRIAN_SERVER_URL", "   ")
	if _, err := Load(NewViper()); err == nil {
		t.Fatal("expected validation error for blank server.url")
	}
}
