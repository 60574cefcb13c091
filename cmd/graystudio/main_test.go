package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/studio"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// writeConfig writes a config with MQTT and InfluxDB disabled and returns
// its path and the database path.
func writeConfig(t *testing.T, port int) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "data", "studio.db")
	cfgPath = filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf(`
studio:
  name: test-studio
  default_scene_name: Opening
  autosave:
    enabled: true
    interval: 1
    keep_revisions: 5

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  enabled: true
  host: "127.0.0.1"
  port: %d
`, dbPath, port)
	if err := os.WriteFile(cfgPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return cfgPath, dbPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYSTUDIO_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidEnvFile verifies a malformed .env file stops startup.
func TestRun_InvalidEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("GRAYSTUDIO_STUDIO_NAME=\"unterminated\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("GRAYSTUDIO_ENV_FILE", envPath)
	t.Setenv("GRAYSTUDIO_CONFIG", "/nonexistent/path/config.yaml")

	if err := run(context.Background()); err == nil {
		t.Fatal("run() should fail")
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("GRAYSTUDIO_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("GRAYSTUDIO_CONFIG", "/custom/path/config.yaml")
	if got := getConfigPath(); got != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q, want /custom/path/config.yaml", got)
	}
}

func TestHealthCheck_NilClients(t *testing.T) {
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	if err := healthCheck(context.Background(), db, nil, nil); err != nil {
		t.Errorf("healthCheck() = %v, want nil", err)
	}
}

func TestNewRelay_NoSinks(t *testing.T) {
	cfg := &config.Config{Studio: config.StudioConfig{Name: "test"}}
	st := studio.New(nil, studio.Options{})

	rl, err := newRelay(cfg, nil, nil, st, logging.Default())
	if err != nil || rl != nil {
		t.Errorf("newRelay() = %v, %v, want nil, nil", rl, err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	log := logging.Default()

	if c, err := connectMQTT(config.MQTTConfig{}, log); c != nil || err != nil {
		t.Errorf("connectMQTT(disabled) = %v, %v, want nil, nil", c, err)
	}
	if c, err := connectInfluxDB(config.InfluxDBConfig{}, "test", log); c != nil || err != nil {
		t.Errorf("connectInfluxDB(disabled) = %v, %v, want nil, nil", c, err)
	}
}

// TestRun_SuccessfulStartupAndShutdown starts the full process with MQTT and
// InfluxDB disabled, queries the API, then cancels and checks that the
// bootstrapped collection was saved.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	port := freePort(t)
	cfgPath, dbPath := writeConfig(t, port)
	t.Setenv("GRAYSTUDIO_CONFIG", cfgPath)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	deadline := time.Now().Add(5 * time.Second)
	var healthy bool
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				healthy = true
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !healthy {
		cancel()
		<-errCh
		t.Fatal("API never became healthy")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}

	db, err := database.Open(config.DatabaseConfig{Path: dbPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer db.Close()

	snap, err := scene.NewSQLiteRepository(db.DB).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want the saved collection", err)
	}
	if len(snap.Scenes) != 1 || snap.Scenes[0].Name != "Opening" {
		t.Errorf("saved scenes = %+v, want the Opening scene", snap.Scenes)
	}
}
