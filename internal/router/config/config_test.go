package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeEnv(t, `SERVER_ADDRESS=127.0.0.1:9000
STORAGE_DRIVER=memory
JWT_SECRET=secret
REQUEST_TTL=24h
SLOT_STEP_MINUTES=30
TIMEZONE=Europe/Moscow
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerAddress != "127.0.0.1:9000" || cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RequestTTL != 24*time.Hour || cfg.SlotStep() != 30*time.Minute {
		t.Fatalf("unexpected durations: %v %v", cfg.RequestTTL, cfg.SlotStep())
	}
	if cfg.RequestTimeout != 5*time.Second || cfg.NotifyTimeout != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Location().String() != "Europe/Moscow" {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeEnv(t, "STORAGE_DRIVER=memory\nJWT_SECRET=from-file\n")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.JWTSecret)
	}
}

func TestValidate(t *testing.T) {
	base := Config{StorageDriver: StorageMemory, JWTSecret: "s", SlotStepMinutes: 60, Timezone: "UTC"}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid memory", mutate: func(c *Config) {}},
		{name: "postgres without conn", mutate: func(c *Config) { c.StorageDriver = StoragePostgres }, wantErr: true},
		{name: "postgres with conn", mutate: func(c *Config) { c.StorageDriver = StoragePostgres; c.PostgresConn = "postgres://x" }},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "mongo" }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "zero step", mutate: func(c *Config) { c.SlotStepMinutes = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
