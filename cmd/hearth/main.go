// Hearth - Home Automation Gateway
//
// This is the main entry point for the Hearth gateway. Hearth sits
// between an MQTT sensor network and its dashboards: it ingests device
// registrations, state, acks and heartbeats from the broker, keeps the
// authoritative device and room registries in memory, and persists
// debounced snapshots to SQLite.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hearth-home/hearth/internal/api"
	"github.com/hearth-home/hearth/internal/device"
	"github.com/hearth-home/hearth/internal/infrastructure/config"
	"github.com/hearth-home/hearth/internal/infrastructure/database"
	"github.com/hearth-home/hearth/internal/infrastructure/influxdb"
	"github.com/hearth-home/hearth/internal/infrastructure/logging"
	"github.com/hearth-home/hearth/internal/infrastructure/mqtt"
	"github.com/hearth-home/hearth/internal/ingest"
	"github.com/hearth-home/hearth/internal/room"
	"github.com/hearth-home/hearth/internal/store"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the snapshot database
	db, err := database.Open(database.Config{
		Path:        cfg.Store.Path,
		WALMode:     cfg.Store.WALMode,
		BusyTimeout: cfg.Store.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Store.Path)

	snapshots := store.NewSQLite(db)
	if initErr := snapshots.Init(ctx); initErr != nil {
		return fmt.Errorf("initialising snapshot store: %w", initErr)
	}

	// Topic grammar shared by ingestion, commands and the status topic
	topics := mqtt.NewTopics(cfg.Gateway.TopicRoot, cfg.Gateway.DevicesSegment)

	// Initialise the device registry and room store
	registry := device.NewRegistry()
	registry.SetLogger(log.With("component", "device"))
	registry.SetTopicPrefix(topics.DevicePrefix())

	rooms := room.NewStore(registry)
	rooms.SetLogger(log.With("component", "room"))

	// Seed both from the last persisted snapshots
	if loadErr := loadSnapshots(ctx, snapshots, registry, rooms); loadErr != nil {
		return fmt.Errorf("loading snapshots: %w", loadErr)
	}
	log.Info("registries seeded", "devices", registry.Count(), "rooms", rooms.Count())

	// Wire the debounced persistence scheduler
	scheduler := store.NewScheduler(snapshots, cfg.DebounceInterval())
	scheduler.SetLogger(log.With("component", "store"))
	scheduler.Register(store.CollectionDevices, func() (any, error) {
		return registry.Snapshot(), nil
	})
	scheduler.Register(store.CollectionRooms, func() (any, error) {
		return rooms.Snapshot(), nil
	})
	registry.SetPersister(scheduler)
	rooms.SetPersister(scheduler)
	defer func() {
		log.Info("flushing snapshots")
		if closeErr := scheduler.Close(); closeErr != nil {
			log.Error("error flushing snapshots", "error", closeErr)
		}
	}()

	// Connect to the MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Bind the ingestion router to the broker
	qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated to 0..2 by config
	router := ingest.NewRouter(topics, registry)
	router.SetLogger(log.With("component", "ingest"))
	if influxClient != nil {
		router.SetRecorder(influxClient)
	}
	if bindErr := router.Bind(mqttClient, qos); bindErr != nil {
		return fmt.Errorf("binding ingestion: %w", bindErr)
	}

	// Start the HTTP API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log.With("component", "api"),
		Registry: registry,
		Rooms:    rooms,
		Topics:   topics,
		Pub:      mqttClient,
		QoS:      qos,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (publishes graceful offline status)
	// 4. Scheduler (final snapshot flush)
	// 5. Database

	log.Info("Hearth stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadSnapshots seeds the registry and room store from the last
// persisted snapshots. A missing snapshot is a fresh install, not an
// error.
func loadSnapshots(ctx context.Context, s store.Store, registry *device.Registry, rooms *room.Store) error {
	doc, err := s.ReadSnapshot(ctx, store.CollectionDevices)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		// fresh install
	case err != nil:
		return err
	default:
		var devices []device.Device
		if err := json.Unmarshal(doc, &devices); err != nil {
			return fmt.Errorf("parsing devices snapshot: %w", err)
		}
		registry.Load(devices)
	}

	doc, err = s.ReadSnapshot(ctx, store.CollectionRooms)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		// fresh install
	case err != nil:
		return err
	default:
		var layout []room.Room
		if err := json.Unmarshal(doc, &layout); err != nil {
			return fmt.Errorf("parsing rooms snapshot: %w", err)
		}
		rooms.Load(layout)
	}

	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
