package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/repository"
)

func TestIsMealTime(t *testing.T) {
	tests := []struct {
		slot string
		want bool
	}{
		{"06:30", false},
		{"07:00", true},
		{"08:59", true},
		{"09:00", false},
		{"10:00", false},
		{"11:00", true},
		{"12:15", true},
		{"13:00", false},
		{"17:30", true},
		{"19:00", false},
		{"bogus", false},
		{"25:00", false},
	}
	for _, tt := range tests {
		if got := IsMealTime(tt.slot); got != tt.want {
			t.Errorf("IsMealTime(%q) = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestMealPeriodName(t *testing.T) {
	tests := map[string]string{
		"07:30": MealBreakfast,
		"12:00": MealLunch,
		"18:15": MealDinner,
		"15:00": "",
	}
	for slot, want := range tests {
		if got := MealPeriodName(slot); got != want {
			t.Errorf("MealPeriodName(%q) = %q, want %q", slot, got, want)
		}
	}
}

func TestMealWindowMultiplier(t *testing.T) {
	lunch, dinner := mealWindows[1], mealWindows[2]
	tests := []struct {
		name   string
		w      mealWindow
		minute int
		want   float64
	}{
		{"breakfast flat", mealWindows[0], 7*60 + 45, 0.8},
		{"lunch start", lunch, 11 * 60, 1.0},
		{"lunch ramp midpoint", lunch, 11*60 + 30, 1.3},
		{"lunch peak start", lunch, 12 * 60, 1.6},
		{"lunch peak end", lunch, 12*60 + 30, 1.6},
		{"lunch ramp down", lunch, 12*60 + 45, 1.3},
		{"dinner peak", dinner, 18*60 + 15, 1.5},
		{"dinner ramp up", dinner, 17*60 + 30, 1.25},
	}
	for _, tt := range tests {
		got := tt.w.multiplier(tt.minute)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: multiplier = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPredictedCongestion_LunchPeakToday(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, kst)
	p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(1)))

	if got := p.PredictedCongestion(3, "12:00", now); got != 5 {
		t.Errorf("PredictedCongestion(3, 12:00, today) = %d, want 5", got)
	}
	if got := p.PredictedCongestion(1, "07:30", now); got != 1 {
		t.Errorf("breakfast should clamp to 1, got %d", got)
	}
	if got := p.PredictedCongestion(3, "10:00", now); got != 0 {
		t.Errorf("outside meal time = %d, want 0", got)
	}
}

func TestPredictedCongestion_AlwaysInRange(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, kst)
	p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(7)))
	tomorrow := now.AddDate(0, 0, 1)

	for _, slot := range TimeSlots() {
		if !IsMealTime(slot) {
			continue
		}
		for base := model.MinCongestion; base <= model.MaxCongestion; base++ {
			got := p.PredictedCongestion(base, slot, tomorrow)
			if got < model.MinCongestion || got > model.MaxCongestion {
				t.Fatalf("PredictedCongestion(%d, %s) = %d out of [1,5]", base, slot, got)
			}
		}
	}
}

func TestPredictedCongestion_JitterIsReproducible(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, kst)
	tomorrow := now.AddDate(0, 0, 1)
	clock := func() time.Time { return now }

	a := NewPredictor(kst, clock, rand.New(rand.NewSource(42)))
	b := NewPredictor(kst, clock, rand.New(rand.NewSource(42)))

	for i := 0; i < 20; i++ {
		slot := []string{"11:30", "12:10", "17:45", "18:20"}[i%4]
		if x, y := a.PredictedCongestion(3, slot, tomorrow), b.PredictedCongestion(3, slot, tomorrow); x != y {
			t.Fatalf("same seed diverged at %d: %d vs %d", i, x, y)
		}
	}
}

func TestWaitTimeFromCongestion(t *testing.T) {
	for c, want := range map[int]int{0: 0, 1: 4, 3: 12, 5: 20} {
		if got := WaitTimeFromCongestion(c); got != want {
			t.Errorf("WaitTimeFromCongestion(%d) = %d, want %d", c, got, want)
		}
	}
}

func TestShouldShowPrediction(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 10, 0, 0, kst)
	p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(1)))

	tests := []struct {
		name string
		date time.Time
		slot string
		want bool
	}{
		{"future slot today", now, "12:30", true},
		{"past slot today", now, "12:00", false},
		{"tomorrow past clock", now.AddDate(0, 0, 1), "07:00", true},
		{"yesterday", now.AddDate(0, 0, -1), "23:00", true},
	}
	for _, tt := range tests {
		if got := p.ShouldShowPrediction(tt.date, tt.slot); got != tt.want {
			t.Errorf("%s: ShouldShowPrediction = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPredictedFacility(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, kst)
	p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(1)))
	plaza := repository.SeedFacilities()[0]

	if got := p.PredictedFacility(plaza, "15:00", now); got != nil {
		t.Fatalf("expected nil outside meal time, got %+v", got)
	}

	today := p.PredictedFacility(plaza, "12:00", now)
	if today == nil {
		t.Fatal("expected a facility for 12:00")
	}
	for i, c := range today.Corners {
		if c.Menu != plaza.Corners[i].Menu {
			t.Errorf("today's menu replaced for %s: %q", c.ID, c.Menu)
		}
		if c.WaitTime != WaitTimeFromCongestion(c.Congestion) {
			t.Errorf("%s: waitTime %d does not follow congestion %d", c.ID, c.WaitTime, c.Congestion)
		}
	}

	tomorrow := p.PredictedFacility(plaza, "12:00", now.AddDate(0, 0, 1))
	for _, c := range tomorrow.Corners {
		if c.Menu != FutureMenuPlaceholder {
			t.Errorf("%s: menu = %q, want placeholder", c.ID, c.Menu)
		}
	}

	if plaza.Corners[0].Menu == FutureMenuPlaceholder {
		t.Error("input facility was mutated")
	}
}

func TestPredictedFacility_PastSlotKeepsLiveValues(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 50, 0, 0, kst)
	p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(1)))
	plaza := repository.SeedFacilities()[0]

	got := p.PredictedFacility(plaza, "12:00", now)
	if got == nil {
		t.Fatal("expected a facility")
	}
	for i, c := range got.Corners {
		if c.Congestion != plaza.Corners[i].Congestion || c.WaitTime != plaza.Corners[i].WaitTime {
			t.Errorf("%s: live values changed for a past slot", c.ID)
		}
	}
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 34 {
		t.Fatalf("len = %d, want 34", len(slots))
	}
	if slots[0] != "06:00" || slots[len(slots)-1] != "22:30" {
		t.Errorf("range = %s..%s", slots[0], slots[len(slots)-1])
	}
}

func TestCurrentTimeSlot(t *testing.T) {
	for clock, want := range map[string]string{"12:47": "12:30", "12:29": "12:00", "07:00": "07:00"} {
		ts, _ := time.ParseInLocation("15:04", clock, kst)
		now := time.Date(2026, 3, 2, ts.Hour(), ts.Minute(), 0, 0, kst)
		p := NewPredictor(kst, func() time.Time { return now }, rand.New(rand.NewSource(1)))
		if got := p.CurrentTimeSlot(); got != want {
			t.Errorf("CurrentTimeSlot at %s = %s, want %s", clock, got, want)
		}
	}
}
