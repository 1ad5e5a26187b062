package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/repository"
	"github.com/shiva/campusq/pkg/geo"
)

// ─── Order Errors ───────────────────────────────────────────

var (
	// ErrOrderNotFound is returned for an unknown orderId.
	ErrOrderNotFound = repository.ErrOrderNotFound

	// ErrOrderAlreadyUsed is returned when activating a COMPLETED order.
	ErrOrderAlreadyUsed = errors.New("이미 사용된 주문입니다")

	// ErrOrderCancelled is returned when activating a CANCELLED order.
	ErrOrderCancelled = errors.New("취소된 주문입니다")

	// ErrOrderNotActivatable is returned when the QR is already active or the
	// order was never paid.
	ErrOrderNotActivatable = errors.New("활성화할 수 없는 상태입니다")

	// ErrOrderNotCancellable is returned for COMPLETED or already CANCELLED orders.
	ErrOrderNotCancellable = errors.New("주문을 취소할 수 없습니다")

	// ErrOrderNotCompletable is returned unless the QR is currently active.
	ErrOrderNotCompletable = errors.New("주문을 완료할 수 없습니다")
)

// ─── OrderService ───────────────────────────────────────────

// archiveTimeout bounds how long a request waits on the audit trail.
const archiveTimeout = 2 * time.Second

// OrderConfig holds the QR rules.
type OrderConfig struct {
	QRTTL           time.Duration
	GeofenceRadiusM float64
}

// OrderService owns the order lifecycle:
//
//	PAID ──activate──▶ QR_ACTIVE ──sweep──▶ QR_EXPIRED ──activate──▶ QR_ACTIVE
//	                       │
//	                       └──complete──▶ COMPLETED
//	any non-terminal ──cancel──▶ CANCELLED
//
// Every accepted transition is also sent to the archiver. Archive failures are
// logged and never fail the request.
type OrderService struct {
	orders     *repository.OrderRepository
	facilities *repository.FacilityRepository
	archiver   OrderArchiver
	predictor  *Predictor
	cfg        OrderConfig
}

// NewOrderService creates an order service.
func NewOrderService(
	orders *repository.OrderRepository,
	facilities *repository.FacilityRepository,
	archiver OrderArchiver,
	predictor *Predictor,
	cfg OrderConfig,
) *OrderService {
	if archiver == nil {
		archiver = NopOrderArchiver{}
	}
	if cfg.QRTTL <= 0 {
		cfg.QRTTL = 3 * time.Minute
	}
	if cfg.GeofenceRadiusM <= 0 {
		cfg.GeofenceRadiusM = geo.DefaultGeofenceM
	}
	return &OrderService{
		orders:     orders,
		facilities: facilities,
		archiver:   archiver,
		predictor:  predictor,
		cfg:        cfg,
	}
}

// Create stores a paid order for the session. Payment is settled before this
// call, so the order starts in PAID.
func (s *OrderService) Create(ctx context.Context, sessionID string, data model.InsertOrder) (*model.Order, error) {
	loc, err := s.resolveLocation(data)
	if err != nil {
		return nil, err
	}

	now := s.predictor.Now()
	items := make([]model.OrderItem, len(data.Items))
	copy(items, data.Items)

	o := s.orders.Create(sessionID, model.Order{
		FacilityID:       data.FacilityID,
		FacilityName:     data.FacilityName,
		FacilityLocation: loc,
		CornerID:         data.CornerID,
		CornerType:       data.CornerType,
		Items:            items,
		TotalAmount:      data.TotalAmount,
		PaymentMethod:    data.PaymentMethod,
		Status:           model.OrderPaid,
		PickupType:       data.PickupType,
		PickupTime:       data.PickupTime,
		PaidAt:           &now,
	}, now)

	log.Printf("[order] ✓ Created %s (#%d) at %s, total=%d", o.OrderID, o.OrderNumber, o.FacilityID, o.TotalAmount)
	s.archive(ctx, ActionCreate, *o)
	return o, nil
}

// List returns the session's orders, newest first, in their current state.
func (s *OrderService) List(sessionID string) []model.Order {
	return s.orders.ListBySession(sessionID)
}

// Get returns one order by orderId.
func (s *OrderService) Get(orderID string) (*model.Order, error) {
	return s.orders.Get(orderID)
}

// ActivateQR issues a QR code valid for the configured TTL, provided the user
// stands within the geofence of the order's facility.
func (s *OrderService) ActivateQR(ctx context.Context, orderID string, user model.Coordinates) (*model.Order, error) {
	now := s.predictor.Now()
	expires := now.Add(s.cfg.QRTTL)

	o, err := s.orders.Update(orderID, func(o *model.Order) error {
		switch {
		case o.Status == model.OrderCompleted:
			return ErrOrderAlreadyUsed
		case o.Status == model.OrderCancelled:
			return ErrOrderCancelled
		case !ValidOrderTransition(ActionActivate, o.Status):
			return ErrOrderNotActivatable
		}

		dist, ok := geo.Within(o.FacilityLocation, user, s.cfg.GeofenceRadiusM)
		if !ok {
			return &GeofenceError{
				Distance: int(math.Round(dist)),
				Limit:    int(math.Round(s.cfg.GeofenceRadiusM)),
			}
		}

		code, err := encodeQR(model.QRPayload{
			OrderID:     o.OrderID,
			OrderNumber: o.OrderNumber,
			FacilityID:  o.FacilityID,
			ActivatedAt: now,
			ExpiresAt:   expires,
		})
		if err != nil {
			return err
		}

		o.Status = model.OrderQRActive
		o.QRCode = &code
		o.QRActivatedAt = &now
		o.QRExpiresAt = &expires
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[order] QR active for %s until %s", o.OrderID, expires.Format(time.RFC3339))
	s.archive(ctx, ActionActivate, *o)
	return o, nil
}

// Cancel cancels any order that has not been COMPLETED.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	now := s.predictor.Now()
	o, err := s.orders.Update(orderID, func(o *model.Order) error {
		if !ValidOrderTransition(ActionCancel, o.Status) {
			return ErrOrderNotCancellable
		}
		o.Status = model.OrderCancelled
		o.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[order] Cancelled %s", o.OrderID)
	s.archive(ctx, ActionCancel, *o)
	return o, nil
}

// Complete marks a QR_ACTIVE order as picked up (kiosk scan).
func (s *OrderService) Complete(ctx context.Context, orderID string) (*model.Order, error) {
	now := s.predictor.Now()
	o, err := s.orders.Update(orderID, func(o *model.Order) error {
		if !ValidOrderTransition(ActionComplete, o.Status) {
			return ErrOrderNotCompletable
		}
		o.Status = model.OrderCompleted
		o.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[order] ✓ Completed %s", o.OrderID)
	s.archive(ctx, ActionComplete, *o)
	return o, nil
}

// ExpireQR moves overdue QR_ACTIVE orders to QR_EXPIRED. Called by the scheduler.
func (s *OrderService) ExpireQR(ctx context.Context) int {
	expired := s.orders.ExpireQR(s.predictor.Now())
	for _, o := range expired {
		log.Printf("[order] QR expired for %s", o.OrderID)
		s.archive(ctx, ActionExpire, o)
	}
	return len(expired)
}

// resolveLocation validates the payload and picks the geofence centre: the
// one sent by the client, or the directory's location for the facility.
func (s *OrderService) resolveLocation(d model.InsertOrder) (model.Coordinates, error) {
	v := validator{}
	v.require(strings.TrimSpace(d.FacilityID) != "", "facilityId", "required")
	v.require(strings.TrimSpace(d.FacilityName) != "", "facilityName", "required")
	v.require(strings.TrimSpace(d.CornerID) != "", "cornerId", "required")
	v.require(len(d.Items) > 0, "items", "at least one item is required")
	for i, it := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		v.require(strings.TrimSpace(it.Menu) != "", field+".menu", "required")
		v.require(it.Quantity > 0, field+".quantity", "must be positive")
		v.require(it.Price >= 0, field+".price", "must not be negative")
	}
	v.require(d.TotalAmount >= 0, "totalAmount", "must not be negative")

	var loc model.Coordinates
	switch {
	case d.FacilityLocation != nil:
		loc = *d.FacilityLocation
		v.require(loc.Lat >= -90 && loc.Lat <= 90, "facilityLocation.lat", "out of range")
		v.require(loc.Lng >= -180 && loc.Lng <= 180, "facilityLocation.lng", "out of range")
	case d.FacilityID != "":
		f, err := s.facilities.Get(d.FacilityID)
		v.require(err == nil, "facilityLocation", "required for facilities outside the directory")
		if err == nil {
			loc = f.Location.Point()
		}
	}

	return loc, v.err()
}

func (s *OrderService) archive(ctx context.Context, action string, o model.Order) {
	actx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	if err := s.archiver.RecordOrder(actx, action, o, s.predictor.Now()); err != nil {
		log.Printf("[order] archive %s for %s failed: %v", action, o.OrderID, err)
	}
}

func encodeQR(p model.QRPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeQR reverses the QR code string into its payload.
func DecodeQR(code string) (*model.QRPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("decode qr code: %w", err)
	}
	var p model.QRPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode qr payload: %w", err)
	}
	return &p, nil
}
