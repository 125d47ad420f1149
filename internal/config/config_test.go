package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Type != "mysql" {
		t.Errorf("database type = %q, want mysql", cfg.Database.Type)
	}
	if cfg.Uploads.Subdir != "properties" {
		t.Errorf("upload subdir = %q", cfg.Uploads.Subdir)
	}
	if cfg.Sweep.Enabled {
		t.Error("sweep must be disabled by default")
	}
	if cfg.Sweep.DailyRunTime != "03:00" || cfg.Sweep.RetentionDays != 7 || cfg.Sweep.MaxDeletionCount != 1000 {
		t.Errorf("sweep defaults = %+v", cfg.Sweep)
	}
	if cfg.Admin.Password != "" {
		t.Error("config must not ship a default admin password")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults, got %v", err)
	}
	if cfg.Database.Type != "mysql" {
		t.Errorf("database type = %q", cfg.Database.Type)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	data := `
server:
  port: "9090"
database:
  type: postgres
  postgres:
    host: pg.internal
    port: 5433
    sslmode: require
uploads:
  dir: public/uploads
  image_host:
    account_id: acct-1
    api_token: tok-1
sweep:
  enabled: true
  daily_run_time: "04:30"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Database.Type != "postgres" || cfg.Database.Postgres.Host != "pg.internal" || cfg.Database.Postgres.Port != 5433 {
		t.Errorf("postgres config = %+v", cfg.Database.Postgres)
	}
	if !cfg.Sweep.Enabled || cfg.Sweep.DailyRunTime != "04:30" {
		t.Errorf("sweep config = %+v", cfg.Sweep)
	}
	// Values not present in the file keep their defaults.
	if cfg.Sweep.RetentionDays != 7 {
		t.Errorf("retention = %d, want default 7", cfg.Sweep.RetentionDays)
	}
	if !cfg.Uploads.HasImageHost() {
		t.Error("image host should be configured")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestHasImageHost(t *testing.T) {
	tests := []struct {
		name    string
		account string
		token   string
		want    bool
	}{
		{"both set", "acct", "tok", true},
		{"account only", "acct", "", false},
		{"token only", "", "tok", false},
		{"neither", "", "", false},
	}
	for _, tt := range tests {
		u := UploadsConfig{ImageHost: ImageHostConfig{AccountID: tt.account, APIToken: tt.token}}
		if got := u.HasImageHost(); got != tt.want {
			t.Errorf("%s: HasImageHost() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRoutePrefix(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"public/uploads", "/uploads"},
		{"public/media/", "/media"},
		{"uploads", "/uploads"},
		{"", "/uploads"},
		{"public/", "/uploads"},
	}
	for _, tt := range tests {
		u := UploadsConfig{Dir: tt.dir}
		if got := u.RoutePrefix(); got != tt.want {
			t.Errorf("RoutePrefix(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
