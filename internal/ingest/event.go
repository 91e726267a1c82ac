package ingest

import (
	"strings"

	"github.com/hearth-home/hearth/internal/infrastructure/mqtt"
)

// Kind identifies the category of an inbound message.
type Kind string

const (
	KindRegister  Kind = "register"
	KindState     Kind = "state"
	KindAck       Kind = "ack"
	KindHeartbeat Kind = "heartbeat"
	KindUnknown   Kind = ""
)

// Event is the result of classifying an inbound topic.
type Event struct {
	Kind     Kind
	DeviceID string
}

// Classify maps an MQTT topic to an event. Topics outside the device
// grammar classify as KindUnknown and are ignored by the router.
func Classify(topics mqtt.Topics, topic string) Event {
	if topic == topics.Register() {
		return Event{Kind: KindRegister}
	}

	prefix := topics.DevicePrefix() + "/"
	if !strings.HasPrefix(topic, prefix) {
		return Event{Kind: KindUnknown}
	}

	rest := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return Event{Kind: KindUnknown}
	}

	switch parts[1] {
	case "state":
		return Event{Kind: KindState, DeviceID: parts[0]}
	case "ack":
		return Event{Kind: KindAck, DeviceID: parts[0]}
	case "heartbeat":
		return Event{Kind: KindHeartbeat, DeviceID: parts[0]}
	default:
		return Event{Kind: KindUnknown}
	}
}
