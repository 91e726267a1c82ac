package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device id does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrMissingID is returned when a registration or event payload carries
	// no device id. On the ingestion path this is logged and swallowed; the
	// command interface surfaces it as invalid input.
	ErrMissingID = errors.New("device: missing id")

	// ErrInvalidEventKind is returned when an event kind is not state, ack,
	// or heartbeat.
	ErrInvalidEventKind = errors.New("device: invalid event kind")
)
