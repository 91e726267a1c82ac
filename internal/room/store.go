package room

import (
	"sort"
	"strings"
	"sync"
)

// Logger is the minimal logging interface the store depends on.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Debug(msg string, args ...any) {}

// Persister schedules a durable write of the current room layout.
type Persister interface {
	Schedule()
}

type noopPersister struct{}

func (noopPersister) Schedule() {}

// DeviceIndex answers whether a device id is known. Assignments are
// validated against it so rooms never reference devices that were
// never seen.
type DeviceIndex interface {
	Exists(id string) bool
}

// Store holds all rooms in memory behind a mutex. Assignments mutate
// room membership only; device records are never touched, so the store
// and the device registry can be locked independently.
type Store struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	devices DeviceIndex
	persist Persister
	logger  Logger
}

// NewStore creates an empty room store validating assignments against
// the given device index.
func NewStore(devices DeviceIndex) *Store {
	return &Store{
		rooms:   make(map[string]*Room),
		devices: devices,
		persist: noopPersister{},
		logger:  noopLogger{},
	}
}

// SetLogger replaces the no-op logger.
func (s *Store) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetPersister replaces the no-op persister.
func (s *Store) SetPersister(p Persister) {
	if p != nil {
		s.persist = p
	}
}

// Load seeds the store from a persisted snapshot. It replaces the
// current contents and does not trigger persistence.
func (s *Store) Load(rooms []Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms = make(map[string]*Room, len(rooms))
	for i := range rooms {
		r := rooms[i]
		if r.Name == "" {
			continue
		}
		if r.Devices == nil {
			r.Devices = []string{}
		}
		s.rooms[r.Name] = &r
	}
	s.logger.Info("rooms loaded", "count", len(s.rooms))
}

// Create adds a new empty room. The name is trimmed; creating a room
// whose name already exists fails with ErrExists.
func (s *Store) Create(name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[name]; ok {
		return nil, ErrExists
	}

	r := &Room{Name: name, Devices: []string{}}
	s.rooms[name] = r
	s.logger.Info("room created", "room", name)
	s.persist.Schedule()
	return r.DeepCopy(), nil
}

// Delete removes a room. Its devices simply become unassigned; device
// records are unaffected.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		return ErrNotFound
	}

	delete(s.rooms, name)
	s.logger.Info("room deleted", "room", name, "unassigned_devices", len(r.Devices))
	s.persist.Schedule()
	return nil
}

// Assign places a device in the named room. The device is removed from
// any other room first so it belongs to at most one room. Assigning a
// device to the room it is already in is a no-op.
func (s *Store) Assign(name, deviceID string) error {
	if deviceID == "" {
		return ErrDeviceNotFound
	}
	if !s.devices.Exists(deviceID) {
		return ErrDeviceNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.rooms[name]
	if !ok {
		return ErrNotFound
	}

	if target.Contains(deviceID) {
		return nil
	}

	for _, r := range s.rooms {
		if r == target {
			continue
		}
		if r.Contains(deviceID) {
			r.Devices = removeID(r.Devices, deviceID)
			s.logger.Debug("device moved between rooms", "device", deviceID, "from", r.Name, "to", name)
		}
	}

	target.Devices = append(target.Devices, deviceID)
	s.logger.Info("device assigned", "device", deviceID, "room", name)
	s.persist.Schedule()
	return nil
}

// Remove takes a device out of the named room. Removing a device that
// is not in the room is a no-op.
func (s *Store) Remove(name, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		return ErrNotFound
	}

	if !r.Contains(deviceID) {
		return nil
	}

	r.Devices = removeID(r.Devices, deviceID)
	s.logger.Info("device unassigned", "device", deviceID, "room", name)
	s.persist.Schedule()
	return nil
}

// Get returns a copy of the named room.
func (s *Store) Get(name string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[name]
	if !ok {
		return nil, ErrNotFound
	}
	return r.DeepCopy(), nil
}

// DevicesOf returns the device ids assigned to the named room.
func (s *Store) DevicesOf(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(r.Devices))
	copy(out, r.Devices)
	return out, nil
}

// RoomOf returns the name of the room holding the device, or "" when
// the device is unassigned.
func (s *Store) RoomOf(deviceID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rooms {
		if r.Contains(deviceID) {
			return r.Name
		}
	}
	return ""
}

// List returns copies of all rooms sorted by name.
func (s *Store) List() []Room {
	return s.Snapshot()
}

// Snapshot returns the full room layout sorted by name, memberships
// sorted by device id, suitable for persistence.
func (s *Store) Snapshot() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		clone := r.DeepCopy()
		sort.Strings(clone.Devices)
		out = append(out, *clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
