package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validBaseConfig() *Config {
	return &Config{
		Store:    StoreConfig{Driver: DriverMemory},
		Surreal:  SurrealConfig{Host: "localhost", Port: "8000", Namespace: "factory", Database: "test"},
		Sequence: SequenceConfig{Start: 1},
		Stub:     StubConfig{IDStart: 1000},
		Log:      LogConfig{Level: "warn", Format: "text"},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()

	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidDriver(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid FACTORY_STORE_DRIVER")
	}
	if !strings.Contains(err.Error(), "FACTORY_STORE_DRIVER") {
		t.Errorf("expected error to mention FACTORY_STORE_DRIVER, got: %v", err)
	}
}

func TestConfig_Validate_SQLiteRequiresPath(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Store.Driver = DriverSQLite
	cfg.Store.SQLitePath = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing FACTORY_STORE_SQLITE_PATH")
	}
	if !strings.Contains(err.Error(), "FACTORY_STORE_SQLITE_PATH") {
		t.Errorf("expected error to mention FACTORY_STORE_SQLITE_PATH, got: %v", err)
	}
}

func TestConfig_Validate_SurrealRequiresConnection(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Store.Driver = DriverSurreal
	cfg.Surreal = SurrealConfig{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing surreal settings")
	}
	for _, key := range []string{"FACTORY_SURREAL_HOST", "FACTORY_SURREAL_PORT", "FACTORY_SURREAL_NAMESPACE", "FACTORY_SURREAL_DATABASE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected error to mention %s, got: %v", key, err)
		}
	}
}

func TestConfig_Validate_SurrealIgnoredForMemory(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Surreal = SurrealConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("surreal settings should not matter for the memory driver: %v", err)
	}
}

func TestConfig_Validate_NegativeStubID(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Stub.IDStart = -1

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "FACTORY_STUB_ID_START") {
		t.Errorf("expected FACTORY_STUB_ID_START error, got: %v", err)
	}
}

func TestConfig_Validate_InvalidLogSettings(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid log settings")
	}
	if !strings.Contains(err.Error(), "FACTORY_LOG_LEVEL") {
		t.Errorf("expected error to mention FACTORY_LOG_LEVEL, got: %v", err)
	}
	if !strings.Contains(err.Error(), "FACTORY_LOG_FORMAT") {
		t.Errorf("expected error to mention FACTORY_LOG_FORMAT, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors for empty config")
	}
	if n := strings.Count(err.Error(), "FACTORY_"); n < 3 {
		t.Errorf("expected at least 3 joined errors, got %d: %v", n, err)
	}
}

// ============================================================================
// Loading
// ============================================================================

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if cfg.Sequence.Start != 1 {
		t.Errorf("expected sequence start 1, got %d", cfg.Sequence.Start)
	}
	if cfg.Stub.IDStart != 1000 {
		t.Errorf("expected stub id start 1000, got %d", cfg.Stub.IDStart)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("FACTORY_STORE_DRIVER", "sqlite")
	t.Setenv("FACTORY_STORE_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("FACTORY_SEQUENCE_START", "50")
	t.Setenv("FACTORY_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "/tmp/x.db" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Sequence.Start != 50 {
		t.Errorf("expected sequence start 50, got %d", cfg.Sequence.Start)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Log.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.yaml")
	data := "store:\n  driver: surreal\nsurreal:\n  namespace: fixtures\nstub:\n  id_start: 5000\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("FACTORY_SURREAL_DATABASE", "from_env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverSurreal {
		t.Errorf("expected surreal driver, got %q", cfg.Store.Driver)
	}
	if cfg.Surreal.Namespace != "fixtures" {
		t.Errorf("expected namespace from file, got %q", cfg.Surreal.Namespace)
	}
	if cfg.Surreal.Database != "from_env" {
		t.Errorf("expected env to win over file, got %q", cfg.Surreal.Database)
	}
	if cfg.Surreal.Host != "localhost" {
		t.Errorf("expected default host, got %q", cfg.Surreal.Host)
	}
	if cfg.Stub.IDStart != 5000 {
		t.Errorf("expected stub id start 5000, got %d", cfg.Stub.IDStart)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFrom_JSON(t *testing.T) {
	cfg, err := LoadFrom(strings.NewReader(`{"log": {"format": "json"}}`), "json")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Log.Format)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected default level, got %q", cfg.Log.Level)
	}
}

// ============================================================================
// Logger
// ============================================================================

func TestConfig_Logger_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := validBaseConfig()
	logger := cfg.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn should be logged: %s", out)
	}
}

func TestConfig_Logger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := validBaseConfig()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	cfg.Logger(&buf).Debug("factory run", "factory", "user")

	if !strings.Contains(buf.String(), `"factory":"user"`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}
