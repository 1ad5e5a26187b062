package service

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/shiva/campusq/internal/repository"
)

// publishTimeout bounds the Redis round trip on each congestion tick.
const publishTimeout = 5 * time.Second

// SchedulerConfig holds the two tick intervals.
type SchedulerConfig struct {
	CongestionInterval time.Duration
	SweepInterval      time.Duration
}

// Scheduler drives the background work:
//
//   - congestion tick: random walk, queue advance, snapshot publish, push update
//   - sweep tick: QR expiry
//
// A tick that is still running when the next one fires is skipped.
type Scheduler struct {
	cfg         SchedulerConfig
	facilities  *repository.FacilityRepository
	waiting     *WaitingService
	orders      *OrderService
	publisher   SnapshotPublisher
	broadcaster FacilityBroadcaster
	predictor   *Predictor

	congestionRunning atomic.Bool
	sweepRunning      atomic.Bool
}

// NewScheduler creates a scheduler. publisher and broadcaster may be nil.
func NewScheduler(
	cfg SchedulerConfig,
	facilities *repository.FacilityRepository,
	waiting *WaitingService,
	orders *OrderService,
	publisher SnapshotPublisher,
	broadcaster FacilityBroadcaster,
	predictor *Predictor,
) *Scheduler {
	if publisher == nil {
		publisher = NopSnapshotPublisher{}
	}
	return &Scheduler{
		cfg:         cfg,
		facilities:  facilities,
		waiting:     waiting,
		orders:      orders,
		publisher:   publisher,
		broadcaster: broadcaster,
		predictor:   predictor,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	congestion := time.NewTicker(s.cfg.CongestionInterval)
	defer congestion.Stop()
	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()

	log.Printf("[scheduler] Started (congestion=%s, sweep=%s)", s.cfg.CongestionInterval, s.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("[scheduler] Stopped")
			return
		case <-congestion.C:
			if s.congestionRunning.CompareAndSwap(false, true) {
				go func() {
					defer s.congestionRunning.Store(false)
					s.CongestionTick(ctx)
				}()
			}
		case <-sweep.C:
			if s.sweepRunning.CompareAndSwap(false, true) {
				go func() {
					defer s.sweepRunning.Store(false)
					s.SweepTick(ctx)
				}()
			}
		}
	}
}

// CongestionTick performs one congestion update.
func (s *Scheduler) CongestionTick(ctx context.Context) {
	s.facilities.RandomWalk()
	moved := s.waiting.Advance()

	facilities := s.facilities.List()
	now := s.predictor.Now()

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, facilities, now); err != nil {
		log.Printf("[scheduler] Snapshot publish failed: %v", err)
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastFacilities(facilities, now); err != nil {
			log.Printf("[scheduler] Broadcast failed: %v", err)
		}
	}

	if moved > 0 {
		log.Printf("[scheduler] Advanced %d waiting tickets", moved)
	}
}

// SweepTick expires overdue QR codes.
func (s *Scheduler) SweepTick(ctx context.Context) {
	if n := s.orders.ExpireQR(ctx); n > 0 {
		log.Printf("[scheduler] Expired %d QR codes", n)
	}
}
