package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/service"
)

// User-facing order messages.
const (
	msgOrderNotFound    = "주문을 찾을 수 없습니다"
	msgLocationRequired = "위치 정보가 필요합니다"
	msgOrderCancelled   = "주문이 취소되었습니다"
	msgOrderCompleted   = "주문이 완료되었습니다"
	msgServerError      = "서버 오류가 발생했습니다"
)

// OrderHandler handles order and QR endpoints. Listing and creation act on the
// caller's session; everything addressed by orderId works for any caller, the
// way a pickup kiosk would.
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": h.svc.List(sessionID(r)),
	})
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.InsertOrder
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request data",
			"details": map[string]string{"body": err.Error()},
		})
		return
	}

	order, err := h.svc.Create(r.Context(), sessionID(r), req)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// Get handles GET /api/orders/{orderId}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(mux.Vars(r)["orderId"])
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

type activateQRRequest struct {
	UserLocation *struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"userLocation"`
}

// ActivateQR handles POST /api/orders/{orderId}/activate-qr
//
// Response codes:
//
//	200: QR issued, valid for three minutes
//	400: Missing location, outside the geofence (distance included), or wrong status
//	404: Order not found
func (h *OrderHandler) ActivateQR(w http.ResponseWriter, r *http.Request) {
	var req activateQRRequest
	if err := decodeJSON(r, &req); err != nil || req.UserLocation == nil ||
		req.UserLocation.Lat == nil || req.UserLocation.Lng == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": msgLocationRequired,
		})
		return
	}

	user := model.Coordinates{Lat: *req.UserLocation.Lat, Lng: *req.UserLocation.Lng}
	order, err := h.svc.ActivateQR(r.Context(), mux.Vars(r)["orderId"], user)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// Cancel handles POST /api/orders/{orderId}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Cancel(r.Context(), mux.Vars(r)["orderId"]); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msgOrderCancelled,
	})
}

// Complete handles POST /api/orders/{orderId}/complete (kiosk scan).
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Complete(r.Context(), mux.Vars(r)["orderId"]); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msgOrderCompleted,
	})
}

// writeActionError is used by the kiosk actions (cancel, complete), which
// answer an unknown orderId with 400 like any other refused action.
func writeActionError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrOrderNotFound) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": msgOrderNotFound,
		})
		return
	}
	writeOrderError(w, err)
}

func writeOrderError(w http.ResponseWriter, err error) {
	var (
		verr *service.ValidationError
		gerr *service.GeofenceError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request data",
			"details": verr.Fields,
		})
	case errors.As(err, &gerr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":  false,
			"message":  gerr.Error(),
			"distance": gerr.Distance,
		})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": msgOrderNotFound,
		})
	case errors.Is(err, service.ErrOrderAlreadyUsed),
		errors.Is(err, service.ErrOrderCancelled),
		errors.Is(err, service.ErrOrderNotActivatable),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrOrderNotCompletable):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
	default:
		log.Printf("[handler] order error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": msgServerError,
		})
	}
}
