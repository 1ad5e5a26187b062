package service

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/repository"
)

// FutureMenuPlaceholder replaces corner menus for any day other than today;
// menus are only published for the current day.
const FutureMenuPlaceholder = "[음식메뉴] - 추후구현"

const (
	slotLayout = "15:04"
	dateLayout = "2006-01-02"

	// Slot grid shown by the UI.
	firstSlotMinute = 6 * 60
	lastSlotMinute  = 22*60 + 30
	slotStep        = 30

	waitMinutesPerLevel = 4
)

// Meal period names returned by MealPeriodName.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// mealWindow describes one meal period in minutes after midnight.
// Inside [start,end) the multiplier ramps linearly from 1.0 at start up to
// peak at peakStart, holds until peakEnd, then ramps back to 1.0 at end.
// A window with flat set uses peak everywhere.
type mealWindow struct {
	name      string
	start     int
	end       int
	peakStart int
	peakEnd   int
	peak      float64
	flat      bool
}

var mealWindows = []mealWindow{
	{name: MealBreakfast, start: 7 * 60, end: 9 * 60, peak: 0.8, flat: true},
	{name: MealLunch, start: 11 * 60, end: 13 * 60, peakStart: 12 * 60, peakEnd: 12*60 + 30, peak: 1.6},
	{name: MealDinner, start: 17 * 60, end: 19 * 60, peakStart: 18 * 60, peakEnd: 18*60 + 30, peak: 1.5},
}

func (w mealWindow) contains(minute int) bool {
	return minute >= w.start && minute < w.end
}

func (w mealWindow) multiplier(minute int) float64 {
	switch {
	case w.flat:
		return w.peak
	case minute < w.peakStart:
		return lerp(1.0, w.peak, float64(minute-w.start)/float64(w.peakStart-w.start))
	case minute <= w.peakEnd:
		return w.peak
	default:
		return lerp(w.peak, 1.0, float64(minute-w.peakEnd)/float64(w.end-w.peakEnd))
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ParseSlot turns "HH:MM" into minutes after midnight.
func ParseSlot(slot string) (int, error) {
	t, err := time.Parse(slotLayout, slot)
	if err != nil {
		return 0, fmt.Errorf("invalid time slot %q: %w", slot, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func mealWindowFor(slot string) (mealWindow, bool) {
	minute, err := ParseSlot(slot)
	if err != nil {
		return mealWindow{}, false
	}
	for _, w := range mealWindows {
		if w.contains(minute) {
			return w, true
		}
	}
	return mealWindow{}, false
}

// IsMealTime reports whether slot falls in [07,09), [11,13) or [17,19).
// Malformed slots are never meal time.
func IsMealTime(slot string) bool {
	_, ok := mealWindowFor(slot)
	return ok
}

// MealPeriodName returns breakfast, lunch, dinner, or "" outside meal time.
func MealPeriodName(slot string) string {
	w, ok := mealWindowFor(slot)
	if !ok {
		return ""
	}
	return w.name
}

// WaitTimeFromCongestion converts a congestion level into minutes. Level 0
// (no prediction) means no wait.
func WaitTimeFromCongestion(congestion int) int {
	if congestion <= 0 {
		return 0
	}
	return congestion * waitMinutesPerLevel
}

// TimeSlots returns the half-hour grid from 06:00 to 22:30.
func TimeSlots() []string {
	slots := make([]string, 0, (lastSlotMinute-firstSlotMinute)/slotStep+1)
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotStep {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// ─── Predictor ──────────────────────────────────────────────

// Predictor evaluates the congestion model against a clock and a random
// source. Both are injected so tests can pin "today" and the jitter.
type Predictor struct {
	loc *time.Location
	now func() time.Time

	mu  sync.Mutex // guards rng; *rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewPredictor creates a predictor. loc defines what "today" means.
func NewPredictor(loc *time.Location, now func() time.Time, rng *rand.Rand) *Predictor {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Predictor{loc: loc, now: now, rng: rng}
}

// Now returns the current time in the campus zone.
func (p *Predictor) Now() time.Time {
	return p.now().In(p.loc)
}

// Today returns midnight of the current campus day.
func (p *Predictor) Today() time.Time {
	n := p.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, p.loc)
}

// ParseDate parses YYYY-MM-DD in the campus zone.
func (p *Predictor) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// IsToday reports whether date falls on the current campus day.
func (p *Predictor) IsToday(date time.Time) bool {
	return date.In(p.loc).Format(dateLayout) == p.Now().Format(dateLayout)
}

// CurrentTimeSlot returns now rounded down to the half hour, e.g. 12:47 -> "12:30".
func (p *Predictor) CurrentTimeSlot() string {
	n := p.Now()
	return fmt.Sprintf("%02d:%02d", n.Hour(), n.Minute()/slotStep*slotStep)
}

// PredictedCongestion scales base by the meal-period multiplier for slot.
// For any day other than today a ±5% jitter is applied on top. The result is
// rounded and clamped to [1,5]; outside meal time it is 0 (no prediction).
func (p *Predictor) PredictedCongestion(base int, slot string, date time.Time) int {
	minute, err := ParseSlot(slot)
	if err != nil {
		return 0
	}
	w, ok := mealWindowFor(slot)
	if !ok {
		return 0
	}

	m := w.multiplier(minute)
	if !p.IsToday(date) {
		m *= 0.95 + p.jitterDraw()*0.1
	}
	return repository.ClampCongestion(int(math.Round(float64(base) * m)))
}

// ShouldShowPrediction is true for any other day, and for today only while
// slot is still in the future.
func (p *Predictor) ShouldShowPrediction(date time.Time, slot string) bool {
	if !p.IsToday(date) {
		return true
	}
	minute, err := ParseSlot(slot)
	if err != nil {
		return false
	}
	n := p.Now()
	slotAt := time.Date(n.Year(), n.Month(), n.Day(), minute/60, minute%60, 0, 0, p.loc)
	return slotAt.After(n)
}

// PredictedFacility derives the facility view for slot on date. It returns nil
// outside meal time. When the slot is already past today the live values are
// kept as they are.
func (p *Predictor) PredictedFacility(f model.Facility, slot string, date time.Time) *model.Facility {
	if !IsMealTime(slot) {
		return nil
	}

	out := f.Clone()
	today := p.IsToday(date)
	predict := p.ShouldShowPrediction(date, slot)

	if predict {
		out.AvgCongestion = p.PredictedCongestion(f.AvgCongestion, slot, date)
	}
	for i := range out.Corners {
		c := &out.Corners[i]
		if predict {
			c.Congestion = p.PredictedCongestion(c.Congestion, slot, date)
			c.WaitTime = WaitTimeFromCongestion(c.Congestion)
		}
		if !today && c.Menu != "" {
			c.Menu = FutureMenuPlaceholder
		}
	}
	return &out
}

// PredictAll applies PredictedFacility to every facility and drops the nils.
func (p *Predictor) PredictAll(facilities []model.Facility, slot string, date time.Time) []model.Facility {
	out := make([]model.Facility, 0, len(facilities))
	for _, f := range facilities {
		if pf := p.PredictedFacility(f, slot, date); pf != nil {
			out = append(out, *pf)
		}
	}
	return out
}

func (p *Predictor) jitterDraw() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}
