package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/hearth-home/hearth/internal/device"
	"github.com/hearth-home/hearth/internal/infrastructure/mqtt"
)

// Logger is the minimal logging interface the router depends on.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Debug(msg string, args ...any) {}

// Registry is the slice of the device registry the router mutates.
type Registry interface {
	Register(payload device.Payload) (*device.Device, error)
	IngestEvent(id string, kind device.EventKind, payload device.Payload) error
}

// Recorder receives numeric telemetry readings. Implemented by the
// InfluxDB writer; nil disables telemetry forwarding.
type Recorder interface {
	WriteReading(deviceID, field string, value float64)
}

// Subscriber is the slice of the MQTT client the router binds to.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Router classifies inbound MQTT messages and dispatches them to the
// device registry. State readings are additionally forwarded to the
// telemetry recorder when one is configured.
type Router struct {
	topics   mqtt.Topics
	registry Registry
	recorder Recorder
	logger   Logger
}

// NewRouter creates a router dispatching to the given registry.
func NewRouter(topics mqtt.Topics, registry Registry) *Router {
	return &Router{
		topics:   topics,
		registry: registry,
		logger:   noopLogger{},
	}
}

// SetLogger replaces the no-op logger.
func (r *Router) SetLogger(l Logger) {
	if l != nil {
		r.logger = l
	}
}

// SetRecorder enables telemetry forwarding for numeric state fields.
func (r *Router) SetRecorder(rec Recorder) {
	r.recorder = rec
}

// Bind subscribes the router to the registration topic and the
// per-device state, ack and heartbeat wildcards.
func (r *Router) Bind(sub Subscriber, qos byte) error {
	subscriptions := []string{
		r.topics.Register(),
		r.topics.AllDeviceStates(),
		r.topics.AllDeviceAcks(),
		r.topics.AllDeviceHeartbeats(),
	}
	for _, topic := range subscriptions {
		if err := sub.Subscribe(topic, qos, r.HandleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	r.logger.Info("ingestion bound", "subscriptions", len(subscriptions))
	return nil
}

// HandleMessage processes one inbound message. Messages on topics
// outside the device grammar are ignored; malformed JSON payloads are
// dropped with an error so the transport layer can log them.
func (r *Router) HandleMessage(topic string, payload []byte) error {
	event := Classify(r.topics, topic)
	if event.Kind == KindUnknown {
		r.logger.Debug("ignoring message on unrecognised topic", "topic", topic)
		return nil
	}

	var body device.Payload
	if err := json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("parsing payload on %s: %w", topic, err)
	}

	switch event.Kind {
	case KindRegister:
		dev, err := r.registry.Register(body)
		if err != nil {
			return fmt.Errorf("registering device: %w", err)
		}
		r.logger.Info("device registered", "device", dev.ID, "type", dev.Type)
		return nil

	case KindState:
		if err := r.registry.IngestEvent(event.DeviceID, device.EventState, body); err != nil {
			return fmt.Errorf("ingesting state for %s: %w", event.DeviceID, err)
		}
		r.forwardReadings(event.DeviceID, body)
		return nil

	case KindAck:
		if err := r.registry.IngestEvent(event.DeviceID, device.EventAck, body); err != nil {
			return fmt.Errorf("ingesting ack for %s: %w", event.DeviceID, err)
		}
		return nil

	case KindHeartbeat:
		if err := r.registry.IngestEvent(event.DeviceID, device.EventHeartbeat, body); err != nil {
			return fmt.Errorf("ingesting heartbeat for %s: %w", event.DeviceID, err)
		}
		return nil
	}
	return nil
}

// forwardReadings sends the numeric fields of a state payload to the
// telemetry recorder. Non-numeric fields are skipped.
func (r *Router) forwardReadings(deviceID string, body device.Payload) {
	if r.recorder == nil {
		return
	}
	for field, value := range body {
		if v, ok := value.(float64); ok {
			r.recorder.WriteReading(deviceID, field, v)
		}
	}
}
