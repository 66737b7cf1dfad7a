package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nwrenn/castdeck/internal/app"
	"github.com/nwrenn/castdeck/internal/command"
	"github.com/nwrenn/castdeck/internal/discovery"
	"github.com/nwrenn/castdeck/internal/registry"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeForbidden  = "forbidden"
	ErrCodeDeviceDown = "device_unreachable"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a domain error to its HTTP representation. Anything
// unrecognised becomes a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, registry.ErrFavoriteNotFound),
		errors.Is(err, app.ErrNoSuchDevice),
		errors.Is(err, app.ErrNoScanResult):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, registry.ErrInvalidRecord),
		errors.Is(err, registry.ErrEmptyFavorite),
		errors.Is(err, app.ErrFavoriteOutOfRange),
		errors.Is(err, app.ErrUnknownStatusProbe),
		errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrMissingArgument),
		errors.Is(err, command.ErrUnexpectedArgument),
		errors.Is(err, command.ErrInvalidArgument),
		errors.Is(err, smartcast.ErrUnknownApp),
		errors.Is(err, smartcast.ErrUnknownInput),
		errors.Is(err, smartcast.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())

	case errors.Is(err, discovery.ErrScanInFlight),
		errors.Is(err, app.ErrNotConnected),
		errors.Is(err, app.ErrPairingInFlight),
		errors.Is(err, app.ErrNoPairingInFlight),
		errors.Is(err, registry.ErrFavoritesFull),
		errors.Is(err, registry.ErrDuplicateFavorite):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())

	case errors.Is(err, smartcast.ErrUnauthorised),
		errors.Is(err, smartcast.ErrPairingDenied):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())

	case errors.Is(err, smartcast.ErrUnreachable):
		writeError(w, http.StatusBadGateway, ErrCodeDeviceDown, err.Error())

	default:
		writeInternalError(w, err.Error())
	}
}
