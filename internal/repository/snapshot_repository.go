package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiva/campusq/internal/model"
)

// ─── Redis-backed facility snapshot ─────────────────────────

const (
	SnapshotKey     = "congestion:facilities"
	SnapshotChannel = "congestion:updates"
)

// Snapshot is the document stored under SnapshotKey and published on SnapshotChannel.
type Snapshot struct {
	Facilities []model.Facility `json:"facilities"`
	Timestamp  time.Time        `json:"timestamp"`
}

// SnapshotRepository mirrors the live facility directory into Redis after
// every congestion tick so dashboards outside this process can read it.
type SnapshotRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSnapshotRepository creates a snapshot mirror. The key expires after ttl
// so a stopped server does not leave stale numbers behind.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{redis: client, ttl: ttl}
}

// Publish stores the snapshot and notifies subscribers in one pipeline.
func (r *SnapshotRepository) Publish(ctx context.Context, facilities []model.Facility, at time.Time) error {
	payload, err := encodeSnapshot(facilities, at)
	if err != nil {
		return err
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, SnapshotKey, payload, r.ttl)
	pipe.Publish(ctx, SnapshotChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("snapshot: publish: %w", err)
	}
	return nil
}

// Latest returns the last published snapshot, or nil if the key has expired.
func (r *SnapshotRepository) Latest(ctx context.Context) (*Snapshot, error) {
	raw, err := r.redis.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: get: %w", err)
	}

	return decodeSnapshot(raw)
}

func encodeSnapshot(facilities []model.Facility, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(Snapshot{Facilities: facilities, Timestamp: at})
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return &s, nil
}
