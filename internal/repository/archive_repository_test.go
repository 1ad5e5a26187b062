package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/shiva/campusq/internal/model"
)

func TestInsertOrderEventSQL(t *testing.T) {
	want := "INSERT INTO order_events (order_id, order_number, session_id, facility_id, corner_id, " +
		"event, status, total_amount, recorded_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	if insertOrderEventSQL != want {
		t.Errorf("insert SQL =\n%s\nwant\n%s", insertOrderEventSQL, want)
	}

	// Every inserted column exists in the schema.
	for _, col := range orderEventColumns {
		if !strings.Contains(createOrderEventsSQL, col+" ") {
			t.Errorf("column %q missing from order_events schema", col)
		}
	}
}

func TestOrderEventArgs(t *testing.T) {
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	o := model.Order{
		OrderID:     "ORD_20260302_001001",
		OrderNumber: 1001,
		SessionID:   "s1",
		FacilityID:  "hanyang_plaza",
		CornerID:    "hp_korean",
		Status:      model.OrderCancelled,
		TotalAmount: 6500,
	}

	args := orderEventArgs("cancel", o, at)
	if len(args) != len(orderEventColumns) {
		t.Fatalf("%d args for %d columns", len(args), len(orderEventColumns))
	}

	want := map[string]any{
		"order_id":     "ORD_20260302_001001",
		"order_number": 1001,
		"session_id":   "s1",
		"facility_id":  "hanyang_plaza",
		"corner_id":    "hp_korean",
		"event":        "cancel",
		"status":       "CANCELLED",
		"total_amount": 6500,
		"recorded_at":  at,
	}
	for i, col := range orderEventColumns {
		if args[i] != want[col] {
			t.Errorf("%s = %v (%T), want %v", col, args[i], args[i], want[col])
		}
	}
}
