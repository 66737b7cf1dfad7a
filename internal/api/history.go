package api

import (
	"net/http"
	"strconv"
)

// handleHistory returns recent activity log entries, newest first.
// Query parameters: limit, offset, device (host:port filter).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	repo := s.app.History()
	if repo == nil {
		writeNotFound(w, "history is disabled")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	if device := q.Get("device"); device != "" {
		entries, err := repo.ListByDevice(r.Context(), device, limit)
		if err != nil {
			writeInternalError(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
		return
	}

	entries, err := repo.List(r.Context(), limit, offset)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
