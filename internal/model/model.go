// Package model contains domain models for the campus congestion and queueing service.
// Everything here lives in process memory; the JSON tags are the wire contract with the UI.
package model

import "time"

// ─── Enums ──────────────────────────────────────────────────

type FacilityType string

const (
	FacilityCafeteria FacilityType = "CAFETERIA"
	FacilityLibrary   FacilityType = "LIBRARY"
	FacilityGym       FacilityType = "GYM"
	FacilityEtc       FacilityType = "ETC"
)

// WaitingStatus is the status of a waiting ticket. Only WAITING is reachable;
// the others are part of the wire schema but no operation produces them yet.
type WaitingStatus string

const (
	WaitingWaiting   WaitingStatus = "WAITING"
	WaitingCalled    WaitingStatus = "CALLED"
	WaitingCompleted WaitingStatus = "COMPLETED"
	WaitingCancelled WaitingStatus = "CANCELLED"
	WaitingNoShow    WaitingStatus = "NO_SHOW"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderQRActive  OrderStatus = "QR_ACTIVE"
	OrderQRExpired OrderStatus = "QR_EXPIRED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Congestion bounds. 5 means "full": no new waiting tickets are accepted.
const (
	MinCongestion = 1
	MaxCongestion = 5
)

// ─── Location ───────────────────────────────────────────────

// Coordinates is a WGS-84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a facility's position plus display data.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Radius   float64 `json:"radius"`
	Address  string  `json:"address"`
	Building string  `json:"building,omitempty"`
}

// Point drops the display fields.
func (l Location) Point() Coordinates {
	return Coordinates{Lat: l.Lat, Lng: l.Lng}
}

// ─── Facility directory ─────────────────────────────────────

// Corner is a serving point within a facility.
type Corner struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Menu           string `json:"menu,omitempty"`
	Price          *int   `json:"price,omitempty"`
	Congestion     int    `json:"congestion"`
	WaitTime       int    `json:"waitTime"`
	CurrentQueue   int    `json:"currentQueue"`
	Available      *int   `json:"available,omitempty"`
	Capacity       *int   `json:"capacity,omitempty"`
	OperatingHours string `json:"operatingHours,omitempty"`
}

// Facility is a campus building with one or more corners.
type Facility struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           FacilityType `json:"type"`
	Location       Location     `json:"location"`
	Capacity       int          `json:"capacity"`
	AvgServiceTime int          `json:"avgServiceTime"`
	AvgCongestion  int          `json:"avgCongestion"`
	Corners        []Corner     `json:"corners"`
}

// Corner returns the corner with the given id, or nil.
func (f *Facility) Corner(id string) *Corner {
	for i := range f.Corners {
		if f.Corners[i].ID == id {
			return &f.Corners[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can read it without holding a lock.
func (f Facility) Clone() Facility {
	out := f
	out.Corners = make([]Corner, len(f.Corners))
	for i, c := range f.Corners {
		out.Corners[i] = c.clone()
	}
	return out
}

func (c Corner) clone() Corner {
	out := c
	out.Price = copyInt(c.Price)
	out.Available = copyInt(c.Available)
	out.Capacity = copyInt(c.Capacity)
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ─── Waiting ────────────────────────────────────────────────

// InsertWaiting is the registration payload. Names are denormalized by the client.
type InsertWaiting struct {
	FacilityID   string `json:"facilityId"`
	FacilityName string `json:"facilityName"`
	CornerID     string `json:"cornerId"`
	CornerName   string `json:"cornerName"`
	CornerType   string `json:"cornerType"`
	Menu         string `json:"menu,omitempty"`
}

// Waiting is a virtual queue ticket. At most one exists per session.
type Waiting struct {
	ID             string        `json:"id"`
	FacilityID     string        `json:"facilityId"`
	FacilityName   string        `json:"facilityName"`
	CornerID       string        `json:"cornerId"`
	CornerName     string        `json:"cornerName"`
	CornerType     string        `json:"cornerType"`
	Menu           string        `json:"menu,omitempty"`
	WaitingNumber  int           `json:"waitingNumber"`
	Status         WaitingStatus `json:"status"`
	RegisteredAt   time.Time     `json:"registeredAt"`
	EstimatedTime  int           `json:"estimatedTime"`
	WaitingAhead   int           `json:"waitingAhead"`
	CurrentCalling int           `json:"currentCalling"`
}

// HistoryItem is a finished waiting ticket shown on the "my page" view.
type HistoryItem struct {
	ID         string        `json:"id"`
	Facility   string        `json:"facility"`
	Date       string        `json:"date"`
	Status     WaitingStatus `json:"status"`
	StatusText string        `json:"statusText"`
}

// ─── Orders ─────────────────────────────────────────────────

// OrderItem is a single line of an order.
type OrderItem struct {
	ID       string `json:"id"`
	MenuID   string `json:"menuId,omitempty"`
	Menu     string `json:"menu"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// InsertOrder is the order creation payload. Payment already happened client-side.
type InsertOrder struct {
	FacilityID       string       `json:"facilityId"`
	FacilityName     string       `json:"facilityName"`
	FacilityLocation *Coordinates `json:"facilityLocation,omitempty"`
	CornerID         string       `json:"cornerId"`
	CornerType       string       `json:"cornerType"`
	Items            []OrderItem  `json:"items"`
	TotalAmount      int          `json:"totalAmount"`
	PaymentMethod    string       `json:"paymentMethod"`
	PickupType       string       `json:"pickupType"`
	PickupTime       string       `json:"pickupTime"`
}

// Order is a pre-paid food order. The store copy keyed by OrderID is authoritative.
type Order struct {
	ID               string      `json:"id"`
	OrderID          string      `json:"orderId"`
	OrderNumber      int         `json:"orderNumber"`
	SessionID        string      `json:"-"`
	FacilityID       string      `json:"facilityId"`
	FacilityName     string      `json:"facilityName"`
	FacilityLocation Coordinates `json:"facilityLocation"`
	CornerID         string      `json:"cornerId"`
	CornerType       string      `json:"cornerType"`
	Items            []OrderItem `json:"items"`
	TotalAmount      int         `json:"totalAmount"`
	PaymentMethod    string      `json:"paymentMethod"`
	Status           OrderStatus `json:"status"`
	QRCode           *string     `json:"qrCode"`
	QRActivatedAt    *time.Time  `json:"qrActivatedAt"`
	QRExpiresAt      *time.Time  `json:"qrExpiresAt"`
	PickupType       string      `json:"pickupType"`
	PickupTime       string      `json:"pickupTime"`
	CreatedAt        time.Time   `json:"createdAt"`
	PaidAt           *time.Time  `json:"paidAt"`
	CompletedAt      *time.Time  `json:"completedAt"`
	CancelledAt      *time.Time  `json:"cancelledAt"`
}

// Clone returns a copy that shares no mutable state with the original.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	return out
}

// QRPayload is the JSON document base64-encoded into Order.QRCode.
type QRPayload struct {
	OrderID     string    `json:"orderId"`
	OrderNumber int       `json:"orderNumber"`
	FacilityID  string    `json:"facilityId"`
	ActivatedAt time.Time `json:"activatedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
