package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiva/campusq/internal/model"
)

// orderCounterStart is the last sequence handed out before startup;
// the first order is #1001.
const orderCounterStart = 1000

// OrderRepository keeps every order in a global index keyed by orderId, plus
// a per-session list of orderIds (newest first). The global index is
// authoritative: session reads always resolve through it, so a change made by
// a kiosk on someone else's order shows up in the owner's list immediately.
type OrderRepository struct {
	mu        sync.RWMutex
	counter   int
	byID      map[string]*model.Order
	bySession map[string][]string
}

// NewOrderRepository creates an empty order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		counter:   orderCounterStart,
		byID:      make(map[string]*model.Order),
		bySession: make(map[string][]string),
	}
}

// Create stamps the order with the next sequence number and stores it.
// The date part of orderId comes from now, so pass a time in the campus zone.
func (r *OrderRepository) Create(sessionID string, o model.Order, now time.Time) *model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	stored := o.Clone()
	stored.ID = uuid.NewString()
	stored.OrderNumber = r.counter
	stored.OrderID = fmt.Sprintf("ORD_%s_%06d", now.Format("20060102"), r.counter)
	stored.SessionID = sessionID
	stored.CreatedAt = now

	r.byID[stored.OrderID] = &stored
	r.bySession[sessionID] = append([]string{stored.OrderID}, r.bySession[sessionID]...)

	out := stored.Clone()
	return &out
}

// ListBySession returns the session's orders, newest first.
func (r *OrderRepository) ListBySession(sessionID string) []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.bySession[sessionID]
	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.byID[id]; ok {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Get returns a copy of one order.
func (r *OrderRepository) Get(orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[orderID]
	if !ok {
		return nil, fmt.Errorf("get order %q: %w", orderID, ErrOrderNotFound)
	}
	c := o.Clone()
	return &c, nil
}

// Update applies fn to the stored order under the write lock. If fn returns an
// error the order is left untouched and the error is returned as is.
func (r *OrderRepository) Update(orderID string, fn func(o *model.Order) error) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[orderID]
	if !ok {
		return nil, fmt.Errorf("update order %q: %w", orderID, ErrOrderNotFound)
	}

	draft := o.Clone()
	if err := fn(&draft); err != nil {
		return nil, err
	}
	*o = draft

	c := o.Clone()
	return &c, nil
}

// ExpireQR moves every QR_ACTIVE order whose deadline is at or before now to
// QR_EXPIRED, clears its QR fields, and returns the orders it changed.
func (r *OrderRepository) ExpireQR(now time.Time) []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []model.Order
	for _, o := range r.byID {
		if o.Status != model.OrderQRActive || o.QRExpiresAt == nil {
			continue
		}
		if now.Before(*o.QRExpiresAt) {
			continue
		}
		o.Status = model.OrderQRExpired
		o.QRCode = nil
		o.QRActivatedAt = nil
		o.QRExpiresAt = nil
		expired = append(expired, o.Clone())
	}
	return expired
}
