// Package repository holds the process-wide state of the campus service.
//
// Each repository owns its maps and counters behind a mutex and hands out
// copies, so callers never observe a half-applied mutation. Nothing here
// survives a restart; the Postgres and Redis adapters are write-only mirrors.
package repository

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/shiva/campusq/internal/model"
)

// defaultAvailableCap bounds seat availability for corners without a capacity.
const defaultAvailableCap = 100

// FacilityRepository is the facility directory. Facilities are seeded once and
// mutated in place by the congestion random walk; they are never deleted.
type FacilityRepository struct {
	mu         sync.RWMutex
	facilities []model.Facility
	rng        *rand.Rand
}

// NewFacilityRepository creates a directory over the given facilities.
// rng drives the random walk; pass a seeded source in tests.
func NewFacilityRepository(facilities []model.Facility, rng *rand.Rand) *FacilityRepository {
	copied := make([]model.Facility, len(facilities))
	for i, f := range facilities {
		copied[i] = f.Clone()
	}
	return &FacilityRepository{facilities: copied, rng: rng}
}

// List returns a snapshot of every facility in directory order.
func (r *FacilityRepository) List() []model.Facility {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Facility, len(r.facilities))
	for i, f := range r.facilities {
		out[i] = f.Clone()
	}
	return out
}

// Get returns a snapshot of one facility.
func (r *FacilityRepository) Get(id string) (*model.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.facilities {
		if f.ID == id {
			c := f.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get facility %q: %w", id, ErrFacilityNotFound)
}

// RandomWalk nudges every live value by a small random delta:
//
//	congestion    ±1, clamped to [1,5]
//	waitTime      ±2, floored at 0
//	currentQueue  ±1, floored at 0
//	available     ±2, clamped to [0, capacity] (capacity defaults to 100)
//	avgCongestion ±1, clamped to [1,5]
func (r *FacilityRepository) RandomWalk() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.facilities {
		f := &r.facilities[i]
		for j := range f.Corners {
			c := &f.Corners[j]
			c.Congestion = ClampCongestion(c.Congestion + r.delta(1))
			c.WaitTime = max(0, c.WaitTime+r.delta(2))
			c.CurrentQueue = max(0, c.CurrentQueue+r.delta(1))
			if c.Available != nil {
				limit := defaultAvailableCap
				if c.Capacity != nil && *c.Capacity > 0 {
					limit = *c.Capacity
				}
				v := min(limit, max(0, *c.Available+r.delta(2)))
				c.Available = &v
			}
		}
		f.AvgCongestion = ClampCongestion(f.AvgCongestion + r.delta(1))
	}
}

// delta returns a uniform integer in [-span, span].
func (r *FacilityRepository) delta(span int) int {
	return r.rng.Intn(2*span+1) - span
}

// ClampCongestion pins a congestion level to [1,5].
func ClampCongestion(c int) int {
	return min(model.MaxCongestion, max(model.MinCongestion, c))
}
