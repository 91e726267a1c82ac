// Package ingest routes inbound MQTT traffic into the device registry.
//
// The router owns the mapping between the topic grammar and registry
// operations: registration announcements become Register calls, and
// per-device state, ack and heartbeat messages become IngestEvent
// calls. Topics outside the grammar are ignored so the gateway can
// share a broker with other traffic.
//
// State payloads carrying numeric fields are also forwarded to an
// optional Recorder for time-series storage. Recording is fire and
// forget; a slow or absent recorder never blocks ingestion.
package ingest
