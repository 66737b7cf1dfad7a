package api

import (
	"encoding/json"
	"net/http"

	"github.com/nwrenn/castdeck/internal/app"
)

// handleScan starts a background discovery scan. The result arrives as a
// scan_complete WebSocket event and via GET /discovery/devices. A scan
// already in flight is reported with 409, not queued.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Scan(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"scanning": true})
}

// handleDiscoveredDevices returns the most recent scan result.
func (s *Server) handleDiscoveredDevices(w http.ResponseWriter, _ *http.Request) {
	result, err := s.app.Discovered()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// saveDiscoveredRequest identifies a discovered device to persist.
type saveDiscoveredRequest struct {
	Host       string `json:"ip"`
	Port       int    `json:"port,omitempty"`
	Name       string `json:"name,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

// handleSaveDiscovered saves a device from the current scan result.
func (s *Server) handleSaveDiscovered(w http.ResponseWriter, r *http.Request) {
	var req saveDiscoveredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Host == "" {
		writeBadRequest(w, "ip is required")
		return
	}

	saved, err := s.app.SaveDiscovered(r.Context(), app.SaveRequest{
		Host:       req.Host,
		Port:       req.Port,
		Name:       req.Name,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
