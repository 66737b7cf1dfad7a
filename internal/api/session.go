package api

import (
	"encoding/json"
	"net/http"

	"github.com/nwrenn/castdeck/internal/command"
)

// connectRequest selects the device to connect to. Saved devices connect by
// ip and port alone; manual connections supply the device type themselves.
type connectRequest struct {
	Host       string `json:"ip"`
	Port       int    `json:"port,omitempty"`
	Manual     bool   `json:"manual,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

// sessionResponse describes the active connection without exposing the auth
// token.
type sessionResponse struct {
	Connected  bool   `json:"connected"`
	Host       string `json:"ip,omitempty"`
	Port       int    `json:"port,omitempty"`
	Name       string `json:"name,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Paired     bool   `json:"paired"`
}

// handleCurrentSession returns the active connection, if any.
func (s *Server) handleCurrentSession(w http.ResponseWriter, _ *http.Request) {
	target, ok := s.app.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Connected: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Connected:  true,
		Host:       target.Host,
		Port:       target.Port,
		Name:       target.Name,
		DeviceType: target.DeviceClass,
		Paired:     target.AuthToken != "",
	})
}

// handleConnect establishes the active device connection.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Host == "" {
		writeBadRequest(w, "ip is required")
		return
	}

	var err error
	if req.Manual {
		_, err = s.app.ConnectManual(r.Context(), req.Host, req.Port, req.DeviceType)
	} else {
		_, err = s.app.Connect(r.Context(), req.Host, req.Port)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.handleCurrentSession(w, r)
}

// handleDisconnect drops the active connection.
func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	s.app.Disconnect()
	writeJSON(w, http.StatusOK, sessionResponse{Connected: false})
}

// handleCommand dispatches one device command over the active connection.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd command.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.app.Command(r.Context(), cmd); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatched": cmd.Name})
}

// handleStatus returns a live snapshot of the connected device. The type
// query parameter selects a single probe; the default is everything.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.app.Status(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handlePairStart begins a pairing exchange with the connected device.
func (s *Server) handlePairStart(w http.ResponseWriter, r *http.Request) {
	ch, err := s.app.PairStart(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"challenge_type": ch.ChallengeType,
		"pairing_token":  ch.Token,
	})
}

// handlePairFinish completes the pairing exchange with the on-screen PIN.
func (s *Server) handlePairFinish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.app.PairFinish(r.Context(), req.PIN); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paired": true})
}

// handlePairCancel abandons the open pairing exchange.
func (s *Server) handlePairCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.app.PairCancel(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}
