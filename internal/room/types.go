package room

// Room groups devices under a human-friendly name. The name doubles as
// the room's identity; a device appears in at most one room at a time.
type Room struct {
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
}

// Contains reports whether the room holds the given device id.
func (r *Room) Contains(deviceID string) bool {
	for _, id := range r.Devices {
		if id == deviceID {
			return true
		}
	}
	return false
}

// DeepCopy returns an independent copy safe to hand to callers.
func (r *Room) DeepCopy() *Room {
	clone := &Room{Name: r.Name}
	clone.Devices = make([]string, len(r.Devices))
	copy(clone.Devices, r.Devices)
	return clone
}
