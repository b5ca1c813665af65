package endpoints

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/doodlesbykumbi/storefront-admin/pkg/server"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/middleware"
	"github.com/doodlesbykumbi/storefront-admin/pkg/server/views"
)

// StatusResponse is the JSON form of the status page.
type StatusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	SessionStore   string `json:"session_store"`
	ActiveSessions int    `json:"active_sessions"`
	Error          string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status page (no auth required)
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/status", handleStatus(s)).Methods("GET")
}

func handleStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("STOREFRONT_VERSION")
		if version == "" {
			version = "0.1.0"
		}
		cfg := s.Config()

		response := StatusResponse{
			Status:         "ok",
			Version:        version,
			SessionStore:   cfg.SessionStore,
			ActiveSessions: s.Sessions.Active(),
		}
		code := http.StatusOK

		if s.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := s.Health.CheckConnectivity(ctx); err != nil {
				response.Status = "error"
				response.Error = "session store connectivity check failed"
				code = http.StatusServiceUnavailable
			}
		}

		if middleware.WantsJSON(r) {
			respondWithJSON(w, code, response)
			return
		}

		storeStatus := response.Status
		if response.Error != "" {
			storeStatus = response.Error
		}
		render(s, w, r, code, views.PageStatus, views.Page{
			Title: "Status",
			Data: struct {
				Version            string
				APIBaseURL         string
				SessionStore       string
				SessionStoreStatus string
				ActiveSessions     int
			}{version, cfg.APIBaseURL, response.SessionStore, storeStatus, response.ActiveSessions},
		})
	}
}
