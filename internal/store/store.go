package store

import (
	"context"
	"errors"
)

// Collection names for the persisted snapshots.
const (
	CollectionDevices = "devices"
	CollectionRooms   = "rooms"
)

// ErrNoSnapshot indicates no snapshot has been written for the
// collection yet. Expected on a fresh install.
var ErrNoSnapshot = errors.New("store: no snapshot")

// Store persists whole-collection snapshots. Each collection is stored
// as a single JSON document and replaced atomically on every write.
type Store interface {
	// ReadSnapshot returns the latest persisted document for the
	// collection, or ErrNoSnapshot when none exists.
	ReadSnapshot(ctx context.Context, collection string) ([]byte, error)

	// WriteSnapshot replaces the persisted document for the collection.
	WriteSnapshot(ctx context.Context, collection string, doc []byte) error
}
