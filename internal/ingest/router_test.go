package ingest

import (
	"errors"
	"sync"
	"testing"

	"github.com/hearth-home/hearth/internal/device"
	"github.com/hearth-home/hearth/internal/infrastructure/mqtt"
)

// fakeRegistry records Register and IngestEvent calls.
type fakeRegistry struct {
	mu         sync.Mutex
	registered []device.Payload
	events     []registeredEvent
	failWith   error
}

type registeredEvent struct {
	id      string
	kind    device.EventKind
	payload device.Payload
}

func (f *fakeRegistry) Register(p device.Payload) (*device.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.registered = append(f.registered, p)
	id, _ := p["id"].(string)
	return &device.Device{ID: id, Type: device.TypeUnknown}, nil
}

func (f *fakeRegistry) IngestEvent(id string, kind device.EventKind, p device.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.events = append(f.events, registeredEvent{id: id, kind: kind, payload: p})
	return nil
}

// fakeRecorder captures forwarded telemetry readings.
type fakeRecorder struct {
	mu       sync.Mutex
	readings map[string]float64
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{readings: make(map[string]float64)}
}

func (f *fakeRecorder) WriteReading(deviceID, field string, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[deviceID+"/"+field] = value
}

// fakeSubscriber records subscription topics.
type fakeSubscriber struct {
	topics []string
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.topics = append(f.topics, topic)
	return nil
}

func testTopics() mqtt.Topics {
	return mqtt.NewTopics("home", "devices")
}

// =============================================================================
// Classification
// =============================================================================

func TestClassify(t *testing.T) {
	topics := testTopics()

	tests := []struct {
		name  string
		topic string
		want  Event
	}{
		{"register", "home/devices/register", Event{Kind: KindRegister}},
		{"state", "home/devices/esp-1/state", Event{Kind: KindState, DeviceID: "esp-1"}},
		{"ack", "home/devices/esp-1/ack", Event{Kind: KindAck, DeviceID: "esp-1"}},
		{"heartbeat", "home/devices/esp-1/heartbeat", Event{Kind: KindHeartbeat, DeviceID: "esp-1"}},
		{"foreign root", "office/devices/esp-1/state", Event{Kind: KindUnknown}},
		{"unknown suffix", "home/devices/esp-1/config", Event{Kind: KindUnknown}},
		{"too deep", "home/devices/esp-1/state/extra", Event{Kind: KindUnknown}},
		{"bare prefix", "home/devices", Event{Kind: KindUnknown}},
		{"command topic", "home/devices/esp-1/set", Event{Kind: KindUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(topics, tt.topic); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.topic, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Dispatch
// =============================================================================

func TestHandleMessage_Register(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	err := router.HandleMessage("home/devices/register",
		[]byte(`{"id":"esp-1","type":"sensor"}`))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if len(reg.registered) != 1 {
		t.Fatalf("registered = %d payloads, want 1", len(reg.registered))
	}
	if reg.registered[0]["id"] != "esp-1" {
		t.Errorf("registered payload = %v", reg.registered[0])
	}
}

func TestHandleMessage_StateEvent(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	err := router.HandleMessage("home/devices/esp-1/state",
		[]byte(`{"temperature":21.5}`))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if len(reg.events) != 1 {
		t.Fatalf("events = %d, want 1", len(reg.events))
	}
	ev := reg.events[0]
	if ev.id != "esp-1" || ev.kind != device.EventState {
		t.Errorf("event = %+v", ev)
	}
	if ev.payload["temperature"] != 21.5 {
		t.Errorf("payload = %v", ev.payload)
	}
}

func TestHandleMessage_AckAndHeartbeat(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	router.HandleMessage("home/devices/esp-1/ack", []byte(`{"ok":true}`))
	router.HandleMessage("home/devices/esp-1/heartbeat", []byte(`{"uptime":60}`))

	if len(reg.events) != 2 {
		t.Fatalf("events = %d, want 2", len(reg.events))
	}
	if reg.events[0].kind != device.EventAck || reg.events[1].kind != device.EventHeartbeat {
		t.Errorf("kinds = %v, %v", reg.events[0].kind, reg.events[1].kind)
	}
}

func TestHandleMessage_UnknownTopicIgnored(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	err := router.HandleMessage("home/gateway/status", []byte(`not even json`))
	if err != nil {
		t.Errorf("HandleMessage() error = %v, unknown topics must be ignored", err)
	}
	if len(reg.registered) != 0 || len(reg.events) != 0 {
		t.Error("unknown topic must not touch the registry")
	}
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	err := router.HandleMessage("home/devices/esp-1/state", []byte(`{broken`))
	if err == nil {
		t.Error("HandleMessage() should return an error for malformed JSON")
	}
	if len(reg.events) != 0 {
		t.Error("malformed payload must not reach the registry")
	}
}

func TestHandleMessage_RegistryErrorPropagates(t *testing.T) {
	reg := &fakeRegistry{failWith: errors.New("boom")}
	router := NewRouter(testTopics(), reg)

	if err := router.HandleMessage("home/devices/register", []byte(`{}`)); err == nil {
		t.Error("registry errors should propagate to the transport layer")
	}
}

// =============================================================================
// Telemetry forwarding
// =============================================================================

func TestHandleMessage_ForwardsNumericReadings(t *testing.T) {
	reg := &fakeRegistry{}
	rec := newFakeRecorder()
	router := NewRouter(testTopics(), reg)
	router.SetRecorder(rec)

	err := router.HandleMessage("home/devices/esp-1/state",
		[]byte(`{"temperature":21.5,"humidity":55,"status":"ok"}`))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if rec.readings["esp-1/temperature"] != 21.5 {
		t.Errorf("temperature reading = %v", rec.readings["esp-1/temperature"])
	}
	if rec.readings["esp-1/humidity"] != 55.0 {
		t.Errorf("humidity reading = %v", rec.readings["esp-1/humidity"])
	}
	if _, ok := rec.readings["esp-1/status"]; ok {
		t.Error("non-numeric fields must not be forwarded")
	}
}

func TestHandleMessage_NoRecorderIsFine(t *testing.T) {
	reg := &fakeRegistry{}
	router := NewRouter(testTopics(), reg)

	err := router.HandleMessage("home/devices/esp-1/state", []byte(`{"temperature":21.5}`))
	if err != nil {
		t.Errorf("HandleMessage() error = %v, nil recorder must be tolerated", err)
	}
}

// =============================================================================
// Binding
// =============================================================================

func TestBind_SubscribesToGrammar(t *testing.T) {
	sub := &fakeSubscriber{}
	router := NewRouter(testTopics(), &fakeRegistry{})

	if err := router.Bind(sub, 1); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	want := []string{
		"home/devices/register",
		"home/devices/+/state",
		"home/devices/+/ack",
		"home/devices/+/heartbeat",
	}
	if len(sub.topics) != len(want) {
		t.Fatalf("subscriptions = %v, want %v", sub.topics, want)
	}
	for i, topic := range want {
		if sub.topics[i] != topic {
			t.Errorf("subscription[%d] = %q, want %q", i, sub.topics[i], topic)
		}
	}
}
