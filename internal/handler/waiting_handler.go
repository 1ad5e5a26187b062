package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/service"
)

// WaitingHandler handles the virtual queue endpoints. All of them act on the
// caller's session.
type WaitingHandler struct {
	svc *service.WaitingService
}

// NewWaitingHandler creates a new waiting handler.
func NewWaitingHandler(svc *service.WaitingService) *WaitingHandler {
	return &WaitingHandler{svc: svc}
}

// Get handles GET /api/waiting
//
// Returns {"waiting": null} when the session has no ticket.
func (h *WaitingHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"waiting": h.svc.Active(sessionID(r)),
	})
}

// Create handles POST /api/waiting
//
// Response codes:
//
//	201: Ticket issued
//	400: Session already waiting, invalid body, or corner full
//	404: Facility or corner not found
func (h *WaitingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.InsertWaiting
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "Invalid request data",
			"details": map[string]string{"body": err.Error()},
		})
		return
	}

	waiting, err := h.svc.Register(sessionID(r), req)
	if err != nil {
		writeWaitingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"waiting": waiting})
}

// Cancel handles DELETE /api/waiting
func (h *WaitingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(sessionID(r)); err != nil {
		writeWaitingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History handles GET /api/history
func (h *WaitingHandler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": h.svc.History(sessionID(r)),
	})
}

func writeWaitingError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "Invalid request data",
			"details": verr.Fields,
		})
	case errors.Is(err, service.ErrActiveWaitingExists):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "already_waiting",
			"message": "Already have an active waiting",
		})
	case errors.Is(err, service.ErrCornerFull):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "corner_full",
			"message": "This corner is currently full",
		})
	case errors.Is(err, service.ErrFacilityNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "Facility not found",
		})
	case errors.Is(err, service.ErrCornerNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "Corner not found",
		})
	case errors.Is(err, service.ErrNoActiveWaiting):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "No active waiting found",
		})
	default:
		log.Printf("[handler] waiting error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": "Failed to process waiting request",
		})
	}
}
