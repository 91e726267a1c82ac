// Package config provides configuration loading for the Hearth gateway.
//
// Configuration is read from a YAML file, layered over built-in defaults,
// and finally overridden by HEARTH_* environment variables. The loaded
// configuration is validated before use so that misconfiguration fails
// fast at startup rather than surfacing later as runtime errors.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Overrides
//
//   - HEARTH_STORE_PATH     — store.path
//   - HEARTH_MQTT_HOST      — mqtt.broker.host
//   - HEARTH_MQTT_PORT      — mqtt.broker.port
//   - HEARTH_MQTT_USERNAME  — mqtt.auth.username
//   - HEARTH_MQTT_PASSWORD  — mqtt.auth.password
//   - HEARTH_API_HOST       — api.host
//   - HEARTH_API_PORT       — api.port
//   - HEARTH_INFLUXDB_TOKEN — influxdb.token
package config
