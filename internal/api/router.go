package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nwrenn/castdeck/internal/command"
	"github.com/nwrenn/castdeck/internal/smartcast"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// Static catalogues
		r.Get("/commands", s.handleListCommands)
		r.Get("/apps", s.handleListApps)

		// Saved devices
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleSaveDevice)

			r.Route("/{host}/{port}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Delete("/", s.handleDeleteDevice)

				r.Route("/favorites", func(r chi.Router) {
					r.Get("/", s.handleListFavorites)
					r.Post("/", s.handleAddFavorite)
					r.Delete("/{app}", s.handleRemoveFavorite)
					r.Post("/{index}/activate", s.handleActivateFavorite)
				})
			})
		})

		// Discovery
		r.Route("/discovery", func(r chi.Router) {
			r.Post("/scan", s.handleScan)
			r.Get("/devices", s.handleDiscoveredDevices)
			r.Post("/save", s.handleSaveDiscovered)
		})

		// Active device session
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleCurrentSession)
			r.Post("/connect", s.handleConnect)
			r.Post("/disconnect", s.handleDisconnect)
			r.Post("/command", s.handleCommand)
			r.Get("/status", s.handleStatus)

			r.Route("/pair", func(r chi.Router) {
				r.Post("/start", s.handlePairStart)
				r.Post("/finish", s.handlePairFinish)
				r.Post("/cancel", s.handlePairCancel)
			})
		})

		// Activity log
		r.Get("/history", s.handleHistory)

		// WebSocket event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleListCommands returns the command set with argument requirements.
func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	type commandInfo struct {
		Name     command.Name `json:"name"`
		TakesArg bool         `json:"takes_arg"`
	}

	names := command.Names()
	out := make([]commandInfo, 0, len(names))
	for _, name := range names {
		out = append(out, commandInfo{Name: name, TakesArg: name.TakesArg()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": out})
}

// handleListApps returns the launchable app catalogue.
func (s *Server) handleListApps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"apps": smartcast.KnownApps()})
}
