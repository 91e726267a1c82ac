package device

import (
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Persister is notified after every successful mutation so that the
// in-memory state is eventually written to durable storage. Persistence is
// always deferred; a mutation never blocks on storage I/O.
type Persister interface {
	Schedule()
}

// noopPersister discards persistence requests. Used until SetPersister is
// called, and in tests that don't care about persistence.
type noopPersister struct{}

func (noopPersister) Schedule() {}

// Registry is the canonical in-memory mapping of device id to device record.
//
// It is the single owner of the devices collection: all mutations (from
// ingestion and from the command interface) are serialised behind its
// mutex, and reads return deep copies so callers can never reach into the
// canonical state.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device

	// topicPrefix derives the default topicBase for devices that don't
	// declare one (topicPrefix + "/" + id).
	topicPrefix string

	persist Persister
	logger  Logger
	now     func() time.Time
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices:     make(map[string]*Device),
		topicPrefix: "home/devices",
		persist:     noopPersister{},
		logger:      noopLogger{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetPersister sets the persistence scheduler notified after mutations.
func (r *Registry) SetPersister(p Persister) {
	if p == nil {
		p = noopPersister{}
	}
	r.persist = p
}

// SetTopicPrefix sets the prefix used to derive default topic bases.
func (r *Registry) SetTopicPrefix(prefix string) {
	if prefix != "" {
		r.topicPrefix = prefix
	}
}

// Load seeds the registry from a persisted snapshot. It replaces any
// existing content and does not trigger a persistence request; it is meant
// to be called once on startup before ingestion begins.
func (r *Registry) Load(devices []Device) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = make(map[string]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		r.devices[d.ID] = d.DeepCopy()
	}

	r.logger.Info("device registry loaded", "count", len(devices))
}

// Register handles a device registration announcement.
//
// The payload must carry a non-empty "id"; otherwise ErrMissingID is
// returned (ingestion logs and drops it, the command interface maps it to
// invalid input — the sensor network offers no reply channel, so there is
// nobody to report to on the wire).
//
// For a fresh id a record is created from the declared metadata, with type
// defaulting to "unknown" and topicBase derived from the id when absent.
// Registration is idempotent: if the record already exists only lastSeen is
// refreshed, declared metadata is never overwritten.
//
// Returns a deep copy of the resulting record.
func (r *Registry) Register(p Payload) (*Device, error) {
	id := stringField(p, "id")
	if id == "" {
		r.logger.Warn("registration without id ignored")
		return nil, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.devices[id]; ok {
		// Re-registration only proves the device is alive.
		existing.LastSeen = r.now()
		r.persist.Schedule()
		return existing.DeepCopy(), nil
	}

	dev := &Device{
		ID:           id,
		Model:        stringField(p, "model"),
		Type:         stringField(p, "type"),
		Capabilities: stringSliceField(p, "capabilities"),
		Alias:        stringField(p, "alias"),
		TopicBase:    stringField(p, "topicBase"),
		LastSeen:     r.now(),
	}
	if dev.Type == "" {
		dev.Type = TypeUnknown
	}
	if dev.Capabilities == nil {
		dev.Capabilities = []string{}
	}
	if dev.TopicBase == "" {
		dev.TopicBase = r.defaultTopicBase(id)
	}

	r.devices[id] = dev
	r.persist.Schedule()

	r.logger.Info("device registered", "id", id, "type", dev.Type, "model", dev.Model)
	return dev.DeepCopy(), nil
}

// IngestEvent stores a state, ack, or heartbeat payload on a device record.
//
// If the id is unknown, a minimal record is auto-created (type "unknown",
// capabilities inferred from the payload's key set, topicBase derived from
// the id). Known devices should register explicitly, but telemetry must
// never be dropped merely because registration was missed or reordered.
//
// The payload overwrites the previous one of the same kind: last-write-wins
// on arrival order, with no ordering guarantee relative to other kinds.
func (r *Registry) IngestEvent(id string, kind EventKind, p Payload) error {
	if id == "" {
		r.logger.Warn("event without device id ignored", "kind", kind)
		return ErrMissingID
	}
	if !kind.Valid() {
		return ErrInvalidEventKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[id]
	if !ok {
		dev = &Device{
			ID:           id,
			Type:         TypeUnknown,
			Capabilities: payloadKeys(p),
			TopicBase:    r.defaultTopicBase(id),
		}
		r.devices[id] = dev
		r.logger.Info("device auto-registered from event", "id", id, "kind", kind)
	}

	dev.LastSeen = r.now()
	payload := p.DeepCopy()
	switch kind {
	case EventState:
		dev.LastState = payload
	case EventAck:
		dev.LastAck = payload
	case EventHeartbeat:
		dev.LastHeartbeat = payload
	}

	r.persist.Schedule()
	r.logger.Debug("device event stored", "id", id, "kind", kind)
	return nil
}

// SetAlias sets or clears the human-readable alias of a device.
// An empty alias clears it. Returns ErrNotFound for unknown ids.
func (r *Registry) SetAlias(id, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[id]
	if !ok {
		return ErrNotFound
	}

	dev.Alias = alias
	r.persist.Schedule()

	r.logger.Info("device alias updated", "id", id, "alias", alias)
	return nil
}

// Get retrieves a device by id.
// Returns ErrNotFound if the device does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) Get(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dev.DeepCopy(), nil
}

// Exists reports whether a device with the given id is known.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.devices[id]
	return ok
}

// List retrieves all devices, sorted by id.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) List() []Device {
	return r.Snapshot()
}

// Snapshot returns all devices sorted by id for persistence.
// The order is stable across writes so snapshot documents diff cleanly.
func (r *Registry) Snapshot() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d.DeepCopy())
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

// Count returns the number of known devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// defaultTopicBase derives the topic base for a device that declared none.
// Callers must hold no lock ordering expectations; this reads only
// immutable configuration.
func (r *Registry) defaultTopicBase(id string) string {
	return r.topicPrefix + "/" + id
}

// stringField extracts a string value from a payload, returning "" for
// missing or non-string values.
func stringField(p Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// stringSliceField extracts a string slice from a payload. JSON arrays
// decode as []any, so each element is asserted individually; non-string
// elements are skipped.
func stringSliceField(p Payload, key string) []string {
	raw, ok := p[key]
	if !ok {
		return nil
	}

	switch vals := raw.(type) {
	case []string:
		out := make([]string, len(vals))
		copy(out, vals)
		return out
	case []any:
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// payloadKeys returns the sorted key set of a payload. Used to infer the
// capabilities of auto-registered devices from their first telemetry.
func payloadKeys(p Payload) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
