package room

import "errors"

var (
	// ErrNotFound indicates the named room does not exist.
	ErrNotFound = errors.New("room: not found")

	// ErrExists indicates a room with the same name already exists.
	ErrExists = errors.New("room: already exists")

	// ErrInvalidName indicates the room name is empty or unusable.
	ErrInvalidName = errors.New("room: invalid name")

	// ErrDeviceNotFound indicates the device id is not known to the
	// device registry and cannot be assigned.
	ErrDeviceNotFound = errors.New("room: device not found")
)
