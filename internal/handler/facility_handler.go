package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shiva/campusq/internal/service"
)

// FacilityHandler serves the facility directory and prediction views.
type FacilityHandler struct {
	svc *service.FacilityService
}

// NewFacilityHandler creates a new facility handler.
func NewFacilityHandler(svc *service.FacilityService) *FacilityHandler {
	return &FacilityHandler{svc: svc}
}

// List handles GET /api/facilities
func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	facilities, at := h.svc.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"lastUpdate": at,
	})
}

// Get handles GET /api/facilities/{id}
func (h *FacilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrFacilityNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":   "not_found",
				"message": "Facility not found",
			})
			return
		}
		log.Printf("[handler] get facility error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": "Failed to fetch facility",
		})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// TimeSlots handles GET /api/timeslots
func (h *FacilityHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, current := h.svc.TimeSlots()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slots":   slots,
		"current": current,
	})
}

// Predictions handles GET /api/predictions?date=YYYY-MM-DD&slot=HH:MM
//
// Facilities with no prediction for the slot (outside meal time) are omitted.
func (h *FacilityHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.svc.Predict(q.Get("date"), q.Get("slot"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid_request",
				"message": "Invalid request data",
				"details": verr.Fields,
			})
			return
		}
		log.Printf("[handler] predictions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
		return
	}
	writeJSON(w, http.StatusOK, view)
}
