package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/campusq/internal/model"
)

// ArchiveRepository appends order lifecycle events to PostgreSQL.
//
// The table is an audit trail only. Nothing reads it back at startup, so the
// in-memory OrderRepository stays the single source of truth.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

const createOrderEventsSQL = `
	CREATE TABLE IF NOT EXISTS order_events (
		id            BIGSERIAL PRIMARY KEY,
		order_id      TEXT        NOT NULL,
		order_number  INTEGER     NOT NULL,
		session_id    TEXT        NOT NULL,
		facility_id   TEXT        NOT NULL,
		corner_id     TEXT        NOT NULL,
		event         TEXT        NOT NULL,
		status        TEXT        NOT NULL,
		total_amount  INTEGER     NOT NULL,
		recorded_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events (order_id);
`

// EnsureSchema creates the order_events table if it does not exist.
func (r *ArchiveRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createOrderEventsSQL); err != nil {
		return fmt.Errorf("archive: ensure schema: %w", err)
	}
	return nil
}

// orderEventColumns is the insert column order; orderEventArgs must match it.
var orderEventColumns = []string{
	"order_id", "order_number", "session_id", "facility_id", "corner_id",
	"event", "status", "total_amount", "recorded_at",
}

var insertOrderEventSQL = buildInsert("order_events", orderEventColumns)

func buildInsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func orderEventArgs(event string, o model.Order, at time.Time) []any {
	return []any{
		o.OrderID, o.OrderNumber, o.SessionID, o.FacilityID, o.CornerID,
		event, string(o.Status), o.TotalAmount, at,
	}
}

// RecordOrder appends one row describing the order's state after event.
func (r *ArchiveRepository) RecordOrder(ctx context.Context, event string, o model.Order, at time.Time) error {
	if _, err := r.pool.Exec(ctx, insertOrderEventSQL, orderEventArgs(event, o, at)...); err != nil {
		return fmt.Errorf("archive: record %s for %s: %w", event, o.OrderID, err)
	}
	return nil
}
