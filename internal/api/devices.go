package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearth-home/hearth/internal/device"
)

// handleListDevices returns all known devices sorted by id.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.List()
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleRegisterDevice registers a device through the API, mirroring
// the MQTT registration path for devices provisioned by hand.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var payload device.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev, err := s.registry.Register(payload)
	if err != nil {
		if errors.Is(err, device.ErrMissingID) {
			writeBadRequest(w, "id is required")
			return
		}
		writeInternalError(w, "failed to register device")
		return
	}

	writeJSON(w, http.StatusCreated, dev)
}

// aliasRequest is the body for setting a device alias.
type aliasRequest struct {
	Alias string `json:"alias"`
}

// handleSetAlias sets or clears a device's human-friendly alias.
func (s *Server) handleSetAlias(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.registry.SetAlias(id, req.Alias); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to set alias")
		return
	}

	dev, err := s.registry.Get(id)
	if err != nil {
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleCommand publishes a command payload to the device's command
// topic. The command is a pass-through; the registry is only updated
// when the device acknowledges on its ack topic.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if s.pub == nil {
		writeBadGateway(w, "broker not connected")
		return
	}

	topic := dev.CommandTopic()
	if err := s.pub.Publish(topic, body, s.qos, false); err != nil {
		s.logger.Warn("command publish failed", "device", id, "topic", topic, "error", err)
		writeBadGateway(w, "failed to publish command")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"device": id, "topic": topic})
}
