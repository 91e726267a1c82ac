package mqtt

import "fmt"

// Default topic grammar segments for the sensor network.
//
// Devices publish and subscribe under a shared root:
//
//	home/devices/register        — device registration announcements
//	home/devices/<id>/state      — telemetry readings
//	home/devices/<id>/ack        — command acknowledgements
//	home/devices/<id>/heartbeat  — liveness pings
//	<topicBase>/set              — outbound commands to a device
//	home/gateway/status          — retained gateway online/offline status
const (
	DefaultRoot           = "home"
	DefaultDevicesSegment = "devices"
)

// Topics provides builders for sensor network topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.NewTopics("home", "devices")
//	stateTopic := topics.DeviceState("esp-1")
//	// Returns: "home/devices/esp-1/state"
type Topics struct {
	root    string
	devices string
}

// NewTopics creates a Topics builder for the given root and devices segment.
// Empty segments fall back to the defaults ("home", "devices").
func NewTopics(root, devices string) Topics {
	if root == "" {
		root = DefaultRoot
	}
	if devices == "" {
		devices = DefaultDevicesSegment
	}
	return Topics{root: root, devices: devices}
}

// DevicePrefix returns the common prefix of all device topics.
//
// Example: home/devices
func (t Topics) DevicePrefix() string {
	return fmt.Sprintf("%s/%s", t.root, t.devices)
}

// Register returns the device registration topic.
//
// Example: home/devices/register
func (t Topics) Register() string {
	return fmt.Sprintf("%s/register", t.DevicePrefix())
}

// DeviceTopicBase returns the default per-device topic base for an id.
// Devices that do not declare a topicBase at registration are assigned this.
//
// Example: home/devices/esp-1
func (t Topics) DeviceTopicBase(id string) string {
	return fmt.Sprintf("%s/%s", t.DevicePrefix(), id)
}

// DeviceState returns the state topic for a device.
//
// Example: home/devices/esp-1/state
func (t Topics) DeviceState(id string) string {
	return fmt.Sprintf("%s/%s/state", t.DevicePrefix(), id)
}

// DeviceAck returns the command acknowledgement topic for a device.
//
// Example: home/devices/esp-1/ack
func (t Topics) DeviceAck(id string) string {
	return fmt.Sprintf("%s/%s/ack", t.DevicePrefix(), id)
}

// DeviceHeartbeat returns the heartbeat topic for a device.
//
// Example: home/devices/esp-1/heartbeat
func (t Topics) DeviceHeartbeat(id string) string {
	return fmt.Sprintf("%s/%s/heartbeat", t.DevicePrefix(), id)
}

// DeviceCommand returns the outbound command topic for a device's topic base.
// Commands are a pass-through publish; the registry is never mutated by them.
//
// Example: home/devices/esp-1/set
func (t Topics) DeviceCommand(topicBase string) string {
	return fmt.Sprintf("%s/set", topicBase)
}

// GatewayStatus returns the retained gateway status topic.
//
// Example: home/gateway/status
func (t Topics) GatewayStatus() string {
	return fmt.Sprintf("%s/gateway/status", t.root)
}

// AllDeviceStates returns a pattern matching every device's state topic.
//
// Pattern: home/devices/+/state
func (t Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/state", t.DevicePrefix())
}

// AllDeviceAcks returns a pattern matching every device's ack topic.
//
// Pattern: home/devices/+/ack
func (t Topics) AllDeviceAcks() string {
	return fmt.Sprintf("%s/+/ack", t.DevicePrefix())
}

// AllDeviceHeartbeats returns a pattern matching every device's heartbeat topic.
//
// Pattern: home/devices/+/heartbeat
func (t Topics) AllDeviceHeartbeats() string {
	return fmt.Sprintf("%s/+/heartbeat", t.DevicePrefix())
}
