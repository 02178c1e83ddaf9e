// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/store"
	ws "github.com/guilherme-santos/linearcalendar/internal/websocket"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Clients   int    `json:"clients"`
}

func HealthCheck(st *store.Store, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Connected: st.Connected(),
			Clients:   hub.ClientCount(),
		})
	}
}

// SessionResponse describes the remote session as the store sees it.
type SessionResponse struct {
	Connected bool              `json:"connected"`
	Loading   bool              `json:"loading"`
	Profile   *internal.Profile `json:"profile,omitempty"`
}

func GetSession(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SessionResponse{
			Connected: st.Connected(),
			Loading:   st.Loading(),
			Profile:   st.Profile(),
		})
	}
}
