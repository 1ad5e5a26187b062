package service

import (
	"context"
	"time"

	"github.com/shiva/campusq/internal/model"
)

// ─── Optional collaborators ─────────────────────────────────
// Redis and Postgres are mirrors, not sources of truth. When they are not
// configured the no-op implementations below are injected instead.

// SnapshotPublisher mirrors the live facility directory somewhere outside the process.
type SnapshotPublisher interface {
	Publish(ctx context.Context, facilities []model.Facility, at time.Time) error
}

// OrderArchiver records order lifecycle events.
type OrderArchiver interface {
	RecordOrder(ctx context.Context, event string, o model.Order, at time.Time) error
}

// FacilityBroadcaster pushes the live directory to connected clients.
type FacilityBroadcaster interface {
	BroadcastFacilities(facilities []model.Facility, at time.Time) error
}

type NopSnapshotPublisher struct{}

func (NopSnapshotPublisher) Publish(context.Context, []model.Facility, time.Time) error { return nil }

type NopOrderArchiver struct{}

func (NopOrderArchiver) RecordOrder(context.Context, string, model.Order, time.Time) error {
	return nil
}
