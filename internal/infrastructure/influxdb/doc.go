// Package influxdb records device telemetry in InfluxDB v2.
//
// Telemetry is optional: when disabled in configuration, Connect
// returns ErrDisabled and the gateway runs without it. When enabled,
// numeric fields from device state payloads are written as
// device_readings points, tagged by device id and field name.
//
// Writes go through the non-blocking batched write API so the MQTT
// ingestion path is never slowed by the time-series backend. Async
// write failures surface through the SetOnError callback.
package influxdb
