package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hearth-home/hearth/internal/device"
	"github.com/hearth-home/hearth/internal/room"
)

// roomName extracts and unescapes the room name URL parameter. Room
// names may contain spaces ("Living Room"), which arrive escaped.
func roomName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// handleListRooms returns all rooms sorted by name.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.rooms.List()
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

// createRoomRequest is the body for creating a room.
type createRoomRequest struct {
	Name string `json:"name"`
}

// handleCreateRoom creates a new empty room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.rooms.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, room.ErrInvalidName):
			writeBadRequest(w, "room name is required")
		case errors.Is(err, room.ErrExists):
			writeConflict(w, "room already exists")
		default:
			writeInternalError(w, "failed to create room")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleDeleteRoom removes a room; its devices become unassigned.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	name := roomName(r)

	if err := s.rooms.Delete(name); err != nil {
		if errors.Is(err, room.ErrNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to delete room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

// handleRoomDevices returns the full device records assigned to a room.
func (s *Server) handleRoomDevices(w http.ResponseWriter, r *http.Request) {
	name := roomName(r)

	ids, err := s.rooms.DevicesOf(name)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to list room devices")
		return
	}

	// Resolve membership ids to device records. Devices are never
	// deleted, so a dangling id only happens on a hand-edited snapshot.
	devices := make([]device.Device, 0, len(ids))
	for _, id := range ids {
		dev, getErr := s.registry.Get(id)
		if getErr != nil {
			s.logger.Warn("room references unknown device", "room", name, "device", id)
			continue
		}
		devices = append(devices, *dev)
	}

	writeJSON(w, http.StatusOK, map[string]any{"room": name, "devices": devices, "count": len(devices)})
}

// assignRequest is the body for assigning or removing a device.
type assignRequest struct {
	DeviceID string `json:"deviceId"`
}

// handleAssignDevice places a device in a room, moving it out of any
// other room it was in.
func (s *Server) handleAssignDevice(w http.ResponseWriter, r *http.Request) {
	name := roomName(r)

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.rooms.Assign(name, req.DeviceID); err != nil {
		switch {
		case errors.Is(err, room.ErrNotFound):
			writeNotFound(w, "room not found")
		case errors.Is(err, room.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			writeInternalError(w, "failed to assign device")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"room": name, "deviceId": req.DeviceID})
}

// handleRemoveDevice takes a device out of a room.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	name := roomName(r)

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.rooms.Remove(name, req.DeviceID); err != nil {
		if errors.Is(err, room.ErrNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to remove device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"room": name, "deviceId": req.DeviceID})
}
