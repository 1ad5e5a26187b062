package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shiva/campusq/internal/model"
)

type recordingPublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *recordingPublisher) Publish(context.Context, []model.Facility, time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *recordingPublisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	last []model.Facility
	n    int
}

func (b *recordingBroadcaster) BroadcastFacilities(f []model.Facility, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = f
	b.n++
	return nil
}

func newTestScheduler(env *testEnv, pub SnapshotPublisher, bc FacilityBroadcaster, every time.Duration) *Scheduler {
	return NewScheduler(
		SchedulerConfig{CongestionInterval: every, SweepInterval: every},
		env.facilities, env.waiting, env.orders, pub, bc, env.predictor,
	)
}

func TestCongestionTick_KeepsValuesInRange(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))
	pub := &recordingPublisher{}
	bc := &recordingBroadcaster{}
	s := newTestScheduler(env, pub, bc, time.Hour)

	const ticks = 300
	for i := 0; i < ticks; i++ {
		s.CongestionTick(context.Background())

		for _, f := range env.facilities.List() {
			if f.AvgCongestion < model.MinCongestion || f.AvgCongestion > model.MaxCongestion {
				t.Fatalf("tick %d: %s avgCongestion = %d", i, f.ID, f.AvgCongestion)
			}
			for _, c := range f.Corners {
				if c.Congestion < model.MinCongestion || c.Congestion > model.MaxCongestion {
					t.Fatalf("tick %d: %s congestion = %d", i, c.ID, c.Congestion)
				}
				if c.WaitTime < 0 || c.CurrentQueue < 0 {
					t.Fatalf("tick %d: %s negative wait/queue", i, c.ID)
				}
				if c.Available != nil {
					limit := 100
					if c.Capacity != nil {
						limit = *c.Capacity
					}
					if *c.Available < 0 || *c.Available > limit {
						t.Fatalf("tick %d: %s available = %d", i, c.ID, *c.Available)
					}
				}
			}
		}
	}

	if pub.Calls() != ticks || bc.n != ticks {
		t.Errorf("publish calls = %d, broadcasts = %d, want %d", pub.Calls(), bc.n, ticks)
	}
	if len(bc.last) != 4 {
		t.Errorf("broadcast %d facilities, want 4", len(bc.last))
	}
}

func TestCongestionTick_AdvancesQueueDespitePublishError(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))
	s := newTestScheduler(env, &recordingPublisher{err: errors.New("redis down")}, nil, time.Hour)

	w, err := env.waiting.Register("s1", plazaKorean())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.CongestionTick(context.Background())

	got := env.waiting.Active("s1")
	if got.WaitingAhead != w.WaitingAhead-1 || got.CurrentCalling != w.CurrentCalling+1 {
		t.Errorf("after tick: %+v", got)
	}
}

func TestSweepTick_ExpiresQR(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))
	s := newTestScheduler(env, nil, nil, time.Hour)
	ctx := context.Background()

	o, _ := env.orders.Create(ctx, "s1", plazaOrder())
	if _, err := env.orders.ActivateQR(ctx, o.OrderID, plazaPoint); err != nil {
		t.Fatalf("ActivateQR: %v", err)
	}

	env.clock.Advance(3*time.Minute + time.Second)
	s.SweepTick(ctx)

	if got, _ := env.orders.Get(o.OrderID); got.Status != model.OrderQRExpired {
		t.Errorf("status = %s, want QR_EXPIRED", got.Status)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))
	pub := &recordingPublisher{}
	s := newTestScheduler(env, pub, nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for pub.Calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("no congestion tick within 2s")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
