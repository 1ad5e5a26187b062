package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shiva/campusq/internal/repository"
)

var kst = time.FixedZone("KST", 9*60*60)

// fakeClock is a settable clock shared by every component under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv wires the in-memory stack the way main does, minus Redis/Postgres.
type testEnv struct {
	clock      *fakeClock
	predictor  *Predictor
	facilities *repository.FacilityRepository
	facility   *FacilityService
	waiting    *WaitingService
	orders     *OrderService
	archive    *recordingArchiver
}

func newTestEnv(now time.Time) *testEnv {
	clock := newFakeClock(now)
	predictor := NewPredictor(kst, clock.Now, rand.New(rand.NewSource(1)))
	facilities := repository.NewFacilityRepository(repository.SeedFacilities(), rand.New(rand.NewSource(2)))
	facility := NewFacilityService(facilities, predictor)
	archive := &recordingArchiver{}

	return &testEnv{
		clock:      clock,
		predictor:  predictor,
		facilities: facilities,
		facility:   facility,
		waiting:    NewWaitingService(facility, repository.NewWaitingRepository(10), predictor),
		orders: NewOrderService(repository.NewOrderRepository(), facilities, archive, predictor, OrderConfig{
			QRTTL:           3 * time.Minute,
			GeofenceRadiusM: 50,
		}),
		archive: archive,
	}
}
