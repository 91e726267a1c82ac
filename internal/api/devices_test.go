package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hearth-home/hearth/internal/device"
	"github.com/hearth-home/hearth/internal/infrastructure/config"
	"github.com/hearth-home/hearth/internal/infrastructure/logging"
	"github.com/hearth-home/hearth/internal/infrastructure/mqtt"
	"github.com/hearth-home/hearth/internal/room"
)

// fakePublisher records published commands.
type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
	fail     bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string][]byte)}
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBrokerDown
	}
	f.messages[topic] = payload
	return nil
}

var errBrokerDown = &brokerError{}

type brokerError struct{}

func (*brokerError) Error() string { return "broker down" }

// testServer creates a Server with a real device registry and room store.
func testServer(t *testing.T) (*Server, *device.Registry, *room.Store, *fakePublisher) {
	t.Helper()

	registry := device.NewRegistry()
	rooms := room.NewStore(registry)
	pub := newFakePublisher()

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger:   log,
		Registry: registry,
		Rooms:    rooms,
		Topics:   mqtt.NewTopics("home", "devices"),
		Pub:      pub,
		QoS:      1,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv, registry, rooms, pub
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response body: %v (%s)", err, rec.Body.String())
	}
	return out
}

// =============================================================================
// Health
// =============================================================================

func TestHandleHealth(t *testing.T) {
	srv, _, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

// =============================================================================
// Devices
// =============================================================================

func TestHandleListDevices(t *testing.T) {
	srv, registry, _, _ := testServer(t)
	registry.Register(device.Payload{"id": "esp-1", "type": "sensor"})
	registry.Register(device.Payload{"id": "esp-2", "type": "sensor"})

	rec := doRequest(t, srv, http.MethodGet, "/api/devices", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"] != 2.0 {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestHandleGetDevice(t *testing.T) {
	srv, registry, _, _ := testServer(t)
	registry.Register(device.Payload{"id": "esp-1", "type": "sensor"})

	rec := doRequest(t, srv, http.MethodGet, "/api/devices/esp-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["id"] != "esp-1" {
		t.Errorf("id = %v", body["id"])
	}
}

func TestHandleGetDevice_NotFound(t *testing.T) {
	srv, _, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/devices/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleRegisterDevice(t *testing.T) {
	srv, registry, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/register",
		`{"id":"esp-1","type":"sensor","capabilities":["temperature"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if !registry.Exists("esp-1") {
		t.Error("device should exist after registration")
	}
}

func TestHandleRegisterDevice_MissingID(t *testing.T) {
	srv, _, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/register", `{"type":"sensor"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSetAlias(t *testing.T) {
	srv, registry, _, _ := testServer(t)
	registry.Register(device.Payload{"id": "esp-1"})

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/esp-1/alias",
		`{"alias":"Kitchen sensor"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	dev, _ := registry.Get("esp-1")
	if dev.Alias != "Kitchen sensor" {
		t.Errorf("Alias = %q", dev.Alias)
	}
}

func TestHandleSetAlias_NotFound(t *testing.T) {
	srv, _, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/ghost/alias", `{"alias":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestHandleCommand_PublishesToCommandTopic(t *testing.T) {
	srv, registry, _, pub := testServer(t)
	registry.Register(device.Payload{"id": "esp-1", "topicBase": "garage/esp-1"})

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/esp-1/set",
		`{"targetTemperature":22}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}

	payload, ok := pub.messages["garage/esp-1/set"]
	if !ok {
		t.Fatalf("nothing published to command topic, got %v", pub.messages)
	}
	if !strings.Contains(string(payload), "targetTemperature") {
		t.Errorf("published payload = %s", payload)
	}

	// Commands never mutate the registry; state changes come via ack.
	dev, _ := registry.Get("esp-1")
	if dev.LastAck != nil || dev.LastState != nil {
		t.Error("command must not mutate device state")
	}
}

func TestHandleCommand_DeviceNotFound(t *testing.T) {
	srv, _, _, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/ghost/set", `{"on":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleCommand_BrokerFailure(t *testing.T) {
	srv, registry, _, pub := testServer(t)
	registry.Register(device.Payload{"id": "esp-1"})
	pub.fail = true

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/esp-1/set", `{"on":true}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleCommand_NoPublisher(t *testing.T) {
	srv, registry, _, _ := testServer(t)
	registry.Register(device.Payload{"id": "esp-1"})
	srv.pub = nil

	rec := doRequest(t, srv, http.MethodPost, "/api/devices/esp-1/set", `{"on":true}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
