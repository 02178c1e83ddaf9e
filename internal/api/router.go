// Package api provides HTTP routing for the calendar's JSON API.
package api

import (
	"time"

	"github.com/gorilla/mux"

	"github.com/guilherme-santos/linearcalendar/internal/api/handlers"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/drag"
	"github.com/guilherme-santos/linearcalendar/internal/holiday"
	"github.com/guilherme-santos/linearcalendar/internal/store"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
	"github.com/guilherme-santos/linearcalendar/internal/websocket"
)

// Services are the collaborators the handlers drive.
type Services struct {
	Store      *store.Store
	Controller *syncer.Controller
	Drag       *drag.Machine
	Holidays   holiday.Provider
	Hub        *websocket.Hub
	Now        func() time.Time
}

func NewRouter(s Services) *mux.Router {
	if s.Drag == nil {
		s.Drag = drag.New(s.Store, s.Controller)
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck(s.Store, s.Hub)).Methods("GET")
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	api.HandleFunc("/months/{year:[0-9]+}/{month:[0-9]+}", handlers.GetMonth(s.Store, s.Holidays, s.Now)).Methods("GET")

	api.HandleFunc("/events", handlers.ListEvents(s.Store)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(s.Controller)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(s.Controller)).Methods("PATCH")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(s.Controller)).Methods("DELETE")

	api.HandleFunc("/drag", handlers.GetDrag(s.Drag)).Methods("GET")
	api.HandleFunc("/drag", handlers.StartDrag(s.Drag)).Methods("POST")
	api.HandleFunc("/drag/drop", handlers.Drop(s.Drag)).Methods("POST")
	api.HandleFunc("/drag/cancel", handlers.CancelDrag(s.Drag)).Methods("POST")

	api.HandleFunc("/year", handlers.GetYear(s.Store)).Methods("GET")
	api.HandleFunc("/year", handlers.SetYear(s.Store, s.Controller)).Methods("PUT")
	api.HandleFunc("/theme", handlers.GetTheme(s.Store)).Methods("GET")
	api.HandleFunc("/theme/toggle", handlers.ToggleTheme(s.Store)).Methods("POST")
	api.HandleFunc("/modal", handlers.GetModal(s.Store)).Methods("GET")
	api.HandleFunc("/modal", handlers.SetModal(s.Store)).Methods("PUT")

	api.HandleFunc("/calendars", handlers.ListCalendars(s.Store)).Methods("GET")
	api.HandleFunc("/calendars/{id}/toggle", handlers.ToggleCalendar(s.Controller)).Methods("POST")
	api.HandleFunc("/sync", handlers.Sync(s.Store, s.Controller)).Methods("POST")
	api.HandleFunc("/session", handlers.GetSession(s.Store)).Methods("GET")
	api.HandleFunc("/connect", handlers.Connect(s.Store, s.Controller)).Methods("POST")
	api.HandleFunc("/disconnect", handlers.Disconnect(s.Controller)).Methods("POST")

	return r
}
