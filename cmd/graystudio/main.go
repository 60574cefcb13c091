// Gray Logic Studio - scene graph runtime for broadcast production.
//
// This is the main entry point for the studio process. It owns the scene
// collection, persists it to SQLite, relays graph events to MQTT and
// InfluxDB, and serves a read-only HTTP/WebSocket API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-studio/internal/api"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-studio/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-studio/internal/relay"
	"github.com/nerrad567/gray-logic-studio/internal/scene"
	"github.com/nerrad567/gray-logic-studio/internal/studio"
	"github.com/nerrad567/gray-logic-studio/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// shutdownSaveTimeout bounds the final save on shutdown.
const shutdownSaveTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It blocks until ctx is cancelled and returns nil on a clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence: each component is optional
	log := logging.Default()
	log.Info("starting Gray Logic Studio",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadDotenv(os.Getenv("GRAYSTUDIO_ENV_FILE")); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version).With("studio", cfg.Studio.Name)
	log.Info("configuration loaded", "path", configPath)

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Scene graph
	st := studio.New(scene.NewSQLiteRepository(db.DB), studio.Options{
		DefaultSceneName: cfg.Studio.DefaultSceneName,
		KeepRevisions:    cfg.Studio.Autosave.KeepRevisions,
		CanvasWidth:      float64(cfg.Studio.Canvas.Width),
		CanvasHeight:     float64(cfg.Studio.Canvas.Height),
		Logger:           log,
	})
	if openErr := st.Open(ctx); openErr != nil {
		return fmt.Errorf("opening scene collection: %w", openErr)
	}
	activeID, activeName := st.ActiveScene()
	log.Info("scene collection ready", "active_scene_id", activeID, "active_scene", activeName)

	defer func() {
		if !st.Dirty() {
			return
		}
		saveCtx, cancel := context.WithTimeout(context.Background(), shutdownSaveTimeout)
		defer cancel()
		if _, saveErr := st.Save(saveCtx); saveErr != nil {
			log.Error("final save failed", "error", saveErr)
		}
	}()

	checks := map[string]api.HealthChecker{"database": db}

	// MQTT (optional)
	mqttClient, err := connectMQTT(cfg.MQTT, log)
	if err != nil {
		return err
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		checks["mqtt"] = mqttClient
	}

	// InfluxDB (optional)
	influxClient, err := connectInfluxDB(cfg.InfluxDB, cfg.Studio.Name, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		checks["influxdb"] = influxClient
	}

	// Event relay
	rl, err := newRelay(cfg, mqttClient, influxClient, st, log)
	if err != nil {
		return fmt.Errorf("creating event relay: %w", err)
	}
	if rl != nil {
		if startErr := rl.Start(ctx, st.Stream()); startErr != nil {
			return fmt.Errorf("starting event relay: %w", startErr)
		}
		defer rl.Stop()
	}

	// API server
	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Logger:     log,
			Studio:     st,
			StudioName: cfg.Studio.Name,
			Version:    version,
			Checks:     checks,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	// Autosave
	var wg sync.WaitGroup
	if cfg.Studio.Autosave.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.RunAutosave(ctx, cfg.GetAutosaveInterval())
		}()
		log.Info("autosave enabled", "interval", cfg.GetAutosaveInterval().String())
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		log.Warn("startup health check failed", "error", err)
	}

	log.Info("Gray Logic Studio started")
	<-ctx.Done()
	log.Info("shutting down")
	wg.Wait()

	return nil
}

// getConfigPath returns the configuration file path.
// GRAYSTUDIO_CONFIG overrides the default.
func getConfigPath() string {
	if path := os.Getenv("GRAYSTUDIO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectMQTT connects to the broker when enabled. It returns nil, nil when
// MQTT is disabled.
func connectMQTT(cfg config.MQTTConfig, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if errors.Is(err, mqtt.ErrDisabled) {
		log.Info("MQTT disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)
	return client, nil
}

// connectInfluxDB connects to InfluxDB when enabled. It returns nil, nil
// when InfluxDB is disabled.
func connectInfluxDB(cfg config.InfluxDBConfig, studioName string, log *logging.Logger) (*influxdb.Client, error) {
	client, err := influxdb.Connect(cfg, studioName)
	if errors.Is(err, influxdb.ErrDisabled) {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "bucket", cfg.Bucket)
	return client, nil
}

// newRelay builds the event relay from whichever sinks are connected. It
// returns nil when there are none. Nil clients are left out of the config
// so the relay's interface fields stay nil.
func newRelay(cfg *config.Config, mqttClient *mqtt.Client, influxClient *influxdb.Client, st *studio.Studio, log *logging.Logger) (*relay.Relay, error) {
	if mqttClient == nil && influxClient == nil {
		log.Info("event relay disabled: no sinks configured")
		return nil, nil
	}

	rc := relay.Config{
		StudioName: cfg.Studio.Name,
		QoS:        byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0..2 by config.Validate
		Buffer:     cfg.MQTT.Buffer,
		State:      st,
		Logger:     log,
	}
	if mqttClient != nil {
		rc.MQTT = mqttClient
	}
	if influxClient != nil {
		rc.Metrics = influxClient
	}
	return relay.New(rc)
}

// healthCheck verifies all infrastructure components are responding.
// Nil clients are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
