package device

import "time"

// TypeUnknown is the device type assigned when registration declares none,
// and to records created by auto-registration.
const TypeUnknown = "unknown"

// Payload holds a decoded JSON message body from the sensor network.
//
// Examples:
//   - State: {"temperature": 21.5, "humidity": 48.2}
//   - Ack: {"targetTemperature": 22.0, "ok": true}
//   - Heartbeat: {"uptime": 86400, "rssi": -61}
type Payload map[string]any

// EventKind identifies which telemetry topic a device message arrived on.
// It selects the record field the payload is stored under.
type EventKind string

// EventKind constants, matching the final topic segment on the wire.
const (
	EventState     EventKind = "state"
	EventAck       EventKind = "ack"
	EventHeartbeat EventKind = "heartbeat"
)

// Valid reports whether k is a recognised event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventState, EventAck, EventHeartbeat:
		return true
	default:
		return false
	}
}

// Device represents a sensor or actuator known to the registry.
//
// The id is externally assigned and immutable once set. Declared metadata
// (model, type, capabilities, topicBase) is written at registration and
// never overwritten by later registrations; only alias and the last*
// telemetry fields are mutable afterwards.
type Device struct {
	// Identity
	ID string `json:"id"`

	// Declared metadata
	Model        string   `json:"model,omitempty"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`

	// Alias is a mutable human label, set via the command interface.
	Alias string `json:"alias,omitempty"`

	// TopicBase is the per-device topic prefix used to derive the outbound
	// command topic (<topicBase>/set). Defaults to a deterministic function
	// of the id when not declared.
	TopicBase string `json:"topicBase"`

	// LastSeen is refreshed on every inbound event for this device.
	LastSeen time.Time `json:"lastSeen"`

	// Most recently received payload of each kind, last-write-wins on
	// arrival order. Absent until the first event of that kind arrives.
	LastState     Payload `json:"lastState,omitempty"`
	LastAck       Payload `json:"lastAck,omitempty"`
	LastHeartbeat Payload `json:"lastHeartbeat,omitempty"`
}

// CommandTopic returns the outbound command topic for this device.
func (d *Device) CommandTopic() string {
	return d.TopicBase + "/set"
}

// HasCapability reports whether the device declares the named capability.
func (d *Device) HasCapability(name string) bool {
	for _, c := range d.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// DeepCopy creates a complete independent copy of the Device.
// All map and slice fields are cloned so modifications to the copy
// do not affect the original. This is essential for cache isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	// Deep copy payloads
	cpy.LastState = d.LastState.DeepCopy()
	cpy.LastAck = d.LastAck.DeepCopy()
	cpy.LastHeartbeat = d.LastHeartbeat.DeepCopy()

	// Deep copy slice
	if d.Capabilities != nil {
		cpy.Capabilities = make([]string, len(d.Capabilities))
		copy(cpy.Capabilities, d.Capabilities)
	}

	return &cpy
}

// DeepCopy creates a deep copy of the payload.
// Nested maps and slices are recursively copied.
func (p Payload) DeepCopy() Payload {
	if p == nil {
		return nil
	}
	cpy := make(Payload, len(p))
	for k, v := range p {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Payload(val).DeepCopy())
	case Payload:
		return val.DeepCopy()
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}
