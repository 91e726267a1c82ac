// Package room manages the assignment of devices to named rooms.
//
// Rooms are lightweight groupings: a name plus the ids of the devices
// currently assigned to it. The central invariant is single membership,
// a device belongs to at most one room at any moment, and Assign
// enforces it by moving the device out of its previous room before
// adding it to the new one.
//
// The Store keeps all rooms in memory behind its own RWMutex and
// validates assignments against a DeviceIndex so rooms never reference
// unknown devices. Mutations notify a Persister so the layout is
// eventually written to disk; reads return deep copies.
//
// Usage:
//
//	rooms := room.NewStore(registry)
//	rooms.SetLogger(logger)
//	rooms.SetPersister(scheduler)
//
//	rooms.Create("Kitchen")
//	rooms.Assign("Kitchen", "esp-1")
package room
