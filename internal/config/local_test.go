package config

import (
	"os"
	"path/filepath"
	"testing"
)

// withHome points HOME at a temp dir for the duration of the test
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCourseworkDir(t *testing.T) {
	home := withHome(t)

	dir, err := CourseworkDir()
	if err != nil {
		t.Fatalf("CourseworkDir() error = %v", err)
	}
	if want := filepath.Join(home, ".coursework"); dir != want {
		t.Errorf("CourseworkDir() = %q, want %q", dir, want)
	}
}

func TestEnsureCourseworkDir(t *testing.T) {
	withHome(t)

	dir, err := EnsureCourseworkDir()
	if err != nil {
		t.Fatalf("EnsureCourseworkDir() error = %v", err)
	}

	for _, sub := range []string{"", "data", "logs"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			t.Errorf("missing %q: %v", sub, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%q is not a directory", sub)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLitePath != filepath.Join("data", "coursework.db") {
		t.Errorf("Storage.SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Events.Enabled {
		t.Error("events should be disabled by default")
	}
}

func TestResolveSQLitePath(t *testing.T) {
	cfg := DefaultLocalConfig()
	if got := cfg.ResolveSQLitePath("/home/ada/.coursework"); got != "/home/ada/.coursework/data/coursework.db" {
		t.Errorf("relative path resolved to %q", got)
	}

	cfg.Storage.SQLitePath = "/var/lib/coursework.db"
	if got := cfg.ResolveSQLitePath("/home/ada/.coursework"); got != "/var/lib/coursework.db" {
		t.Errorf("absolute path resolved to %q", got)
	}
}

func TestLoadLocalConfig_DefaultsWhenNoFile(t *testing.T) {
	withHome(t)

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want default sqlite", cfg.Storage.Driver)
	}
}

func TestLoadLocalConfig_WithConfigFile(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".coursework")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	content := `storage:
  driver: postgres
log:
  level: debug
events:
  enabled: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Errorf("Storage.Driver = %q, want postgres", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLitePath == "" {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Events.Enabled {
		t.Error("Events.Enabled = false, want true")
	}
}

func TestLoadLocalConfig_InvalidConfigYAML(t *testing.T) {
	home := withHome(t)
	dir := filepath.Join(home, ".coursework")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLocalConfig(); err == nil {
		t.Error("LoadLocalConfig() should fail on invalid YAML")
	}
}

func TestLoadSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	content := `database_url: postgres://coursework:secret@db/coursework
rabbitmq_url: amqp://coursework:secret@mq:5672/
`
	if err := os.WriteFile(filepath.Join(tmpDir, "secrets.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultLocalConfig()
	if err := loadSecrets(tmpDir, cfg); err != nil {
		t.Fatalf("loadSecrets() error = %v", err)
	}
	if cfg.Storage.DatabaseURL != "postgres://coursework:secret@db/coursework" {
		t.Errorf("DatabaseURL = %q", cfg.Storage.DatabaseURL)
	}
	if cfg.Events.RabbitMQURL != "amqp://coursework:secret@mq:5672/" {
		t.Errorf("RabbitMQURL = %q", cfg.Events.RabbitMQURL)
	}
}

func TestLoadSecrets_NoSecretsFile(t *testing.T) {
	cfg := DefaultLocalConfig()
	if err := loadSecrets(t.TempDir(), cfg); err != nil {
		t.Errorf("loadSecrets() should not error when file is missing: %v", err)
	}
}

func TestLoadSecrets_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "secrets.yaml"), []byte("database_url: [bad"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := loadSecrets(tmpDir, DefaultLocalConfig()); err == nil {
		t.Error("loadSecrets() should fail on invalid YAML")
	}
}

func TestRoundTrip_ConfigAndSecrets(t *testing.T) {
	withHome(t)

	cfg := DefaultLocalConfig()
	cfg.Storage.Driver = DriverPostgres
	cfg.Events.Enabled = true
	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}
	if err := SaveSecrets(SecretsConfig{
		DatabaseURL: "postgres://localhost/coursework",
		RabbitMQURL: "amqp://localhost:5672/",
	}); err != nil {
		t.Fatalf("SaveSecrets() error = %v", err)
	}

	dir, _ := CourseworkDir()
	info, err := os.Stat(filepath.Join(dir, "secrets.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("secrets.yaml permissions = %o, want 600", perm)
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if loaded.Storage.Driver != DriverPostgres || !loaded.Events.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Storage.DatabaseURL != "postgres://localhost/coursework" {
		t.Errorf("DatabaseURL = %q", loaded.Storage.DatabaseURL)
	}
	if loaded.Events.RabbitMQURL != "amqp://localhost:5672/" {
		t.Errorf("RabbitMQURL = %q", loaded.Events.RabbitMQURL)
	}
}
