// Package handler contains HTTP request handlers for the campus API.
package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

const (
	sessionHeader  = "x-session-id"
	sessionCookie  = "sessionId"
	defaultSession = "guest"

	maxBodyBytes = 1 << 20
)

// sessionID resolves the caller's opaque session key: the sessionId cookie,
// then the x-session-id header, then "guest". It is a map key, not a credential.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if v := r.Header.Get(sessionHeader); v != "" {
		return v
	}
	return defaultSession
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// API groups the handlers so the router can be built in one place.
type API struct {
	Facilities *FacilityHandler
	Waiting    *WaitingHandler
	Orders     *OrderHandler
	WS         *WSHandler
}

// Register mounts every route on router.
func (a API) Register(router *mux.Router) {
	if a.WS != nil {
		router.HandleFunc("/ws", a.WS.Serve).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	// Facility directory and predictions
	api.HandleFunc("/facilities", a.Facilities.List).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{id}", a.Facilities.Get).Methods(http.MethodGet)
	api.HandleFunc("/timeslots", a.Facilities.TimeSlots).Methods(http.MethodGet)
	api.HandleFunc("/predictions", a.Facilities.Predictions).Methods(http.MethodGet)
	// Waiting queue
	api.HandleFunc("/waiting", a.Waiting.Get).Methods(http.MethodGet)
	api.HandleFunc("/waiting", a.Waiting.Create).Methods(http.MethodPost)
	api.HandleFunc("/waiting", a.Waiting.Cancel).Methods(http.MethodDelete)
	api.HandleFunc("/history", a.Waiting.History).Methods(http.MethodGet)
	// Orders and QR
	api.HandleFunc("/orders", a.Orders.List).Methods(http.MethodGet)
	api.HandleFunc("/orders", a.Orders.Create).Methods(http.MethodPost)
	api.HandleFunc("/orders/{orderId}", a.Orders.Get).Methods(http.MethodGet)
	api.HandleFunc("/orders/{orderId}/activate-qr", a.Orders.ActivateQR).Methods(http.MethodPost)
	api.HandleFunc("/orders/{orderId}/cancel", a.Orders.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/orders/{orderId}/complete", a.Orders.Complete).Methods(http.MethodPost)
}
