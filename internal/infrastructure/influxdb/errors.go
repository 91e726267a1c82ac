package influxdb

import "errors"

var (
	// ErrDisabled indicates telemetry recording is turned off in the
	// configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed indicates the InfluxDB server could not be
	// reached or is unhealthy.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected indicates an operation was attempted on a closed
	// or never-connected client.
	ErrNotConnected = errors.New("influxdb: not connected")
)
