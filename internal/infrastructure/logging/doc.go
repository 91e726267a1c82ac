// Package logging provides structured logging for the Hearth gateway.
//
// It wraps the standard library slog package with configuration-driven
// setup (level, format, destination) and default service fields. Components
// that need a logger accept a narrow Logger interface with a no-op default,
// so packages remain testable without log output.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("gateway starting", "broker", cfg.MQTT.Broker.Host)
//
//	ingestLog := log.With("component", "ingest")
//	ingestLog.Warn("malformed payload dropped", "topic", topic)
package logging
