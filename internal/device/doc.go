// Package device provides the Device Registry for the Hearth gateway.
//
// The Device Registry is the canonical catalogue of every sensor and
// actuator known to the gateway. It ingests asynchronous lifecycle and
// telemetry events from the sensor network, maintains an authoritative
// in-memory record per device, and defers durable persistence to a
// scheduler so that ingestion never blocks on storage.
//
// # Key Types
//
//   - Device: the registry record (declared metadata + last* telemetry)
//   - Payload: a decoded JSON message body
//   - EventKind: which telemetry topic a message arrived on (state, ack, heartbeat)
//
// # Lifecycle
//
// Records are created on first registration, or auto-created when telemetry
// arrives for an unknown id (best-effort ingestion-first policy: telemetry
// is never dropped because registration was missed or reordered). Records
// are never deleted by the ingestion path. Registration is idempotent and
// never overwrites declared metadata.
//
// # Usage
//
//	reg := device.NewRegistry()
//	reg.SetLogger(log)
//	reg.SetPersister(scheduler)
//	reg.SetTopicPrefix(topics.DevicePrefix())
//
//	reg.Register(device.Payload{
//	    "id": "esp-1", "type": "sensor",
//	    "capabilities": []any{"temperature", "humidity"},
//	})
//	reg.IngestEvent("esp-1", device.EventState, device.Payload{"temperature": 21.5})
//
//	dev, _ := reg.Get("esp-1") // deep copy, safe to modify
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All mutations are serialised
// behind a read-write mutex and reads return deep copies, so callers never
// observe a partially-applied update.
package device
