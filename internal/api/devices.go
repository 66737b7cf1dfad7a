package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nwrenn/castdeck/internal/app"
	"github.com/nwrenn/castdeck/internal/registry"
)

// deviceParams extracts the host and port route parameters.
func deviceParams(r *http.Request) (string, int, error) {
	host := chi.URLParam(r, "host")
	if host == "" {
		return "", 0, fmt.Errorf("host is required")
	}
	port, err := strconv.Atoi(chi.URLParam(r, "port"))
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port must be a number between 1 and 65535")
	}
	return host, port, nil
}

// handleListDevices returns all saved devices.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.app.Registry().List()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// saveDeviceRequest is the payload for saving a device directly, without
// going through discovery.
type saveDeviceRequest struct {
	Name       string `json:"name"`
	Host       string `json:"ip"`
	Port       int    `json:"port"`
	DeviceType string `json:"device_type"`
	AuthToken  string `json:"auth_token"`
}

// handleSaveDevice upserts a saved device from a manual entry.
func (s *Server) handleSaveDevice(w http.ResponseWriter, r *http.Request) {
	var req saveDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Port == 0 {
		req.Port = app.DefaultPort
	}

	rec := &registry.DeviceRecord{
		Name:       req.Name,
		Host:       req.Host,
		Port:       &req.Port,
		DeviceType: registry.DeviceClass(req.DeviceType),
		AuthToken:  req.AuthToken,
	}
	saved, err := s.app.Registry().Upsert(rec)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleGetDevice returns one saved device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rec, err := s.app.Registry().Get(host, port)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteDevice removes a saved device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.app.RemoveDevice(r.Context(), host, port); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// handleListFavorites returns a device's favourites list.
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	favs, err := s.app.Registry().Favorites(host, port)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"favorites": favs,
		"limit":     registry.MaxFavorites,
	})
}

// handleAddFavorite appends an app to a device's favourites list.
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req struct {
		App string `json:"app"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.app.Registry().AddFavorite(host, port, req.App); err != nil {
		writeDomainError(w, err)
		return
	}

	favs, _ := s.app.Registry().Favorites(host, port)
	writeJSON(w, http.StatusCreated, map[string]any{"favorites": favs})
}

// handleRemoveFavorite deletes an app from a device's favourites list.
func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.app.Registry().RemoveFavorite(host, port, chi.URLParam(r, "app")); err != nil {
		writeDomainError(w, err)
		return
	}

	favs, _ := s.app.Registry().Favorites(host, port)
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favs})
}

// handleActivateFavorite launches the app at a favourites position.
func (s *Server) handleActivateFavorite(w http.ResponseWriter, r *http.Request) {
	host, port, err := deviceParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, "index must be a number")
		return
	}

	if err := s.app.ActivateFavorite(r.Context(), host, port, index); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activated": index})
}
