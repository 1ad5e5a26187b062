package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/repository"
)

// ─── Facility Errors ────────────────────────────────────────

var (
	// ErrFacilityNotFound is returned for an unknown facility id.
	ErrFacilityNotFound = repository.ErrFacilityNotFound

	// ErrCornerNotFound is returned when the facility has no such corner.
	ErrCornerNotFound = errors.New("corner not found")
)

// ─── FacilityService ────────────────────────────────────────

// FacilityService serves the live directory and the prediction views over it.
type FacilityService struct {
	repo      *repository.FacilityRepository
	predictor *Predictor
}

// NewFacilityService creates a facility service.
func NewFacilityService(repo *repository.FacilityRepository, predictor *Predictor) *FacilityService {
	return &FacilityService{repo: repo, predictor: predictor}
}

// List returns every facility and the time the snapshot was taken.
func (s *FacilityService) List() ([]model.Facility, time.Time) {
	return s.repo.List(), s.predictor.Now()
}

// Get returns one facility.
func (s *FacilityService) Get(id string) (*model.Facility, error) {
	return s.repo.Get(id)
}

// Corner returns the facility and one of its corners.
func (s *FacilityService) Corner(facilityID, cornerID string) (*model.Facility, *model.Corner, error) {
	f, err := s.Get(facilityID)
	if err != nil {
		return nil, nil, err
	}
	c := f.Corner(cornerID)
	if c == nil {
		return nil, nil, fmt.Errorf("facility %q corner %q: %w", facilityID, cornerID, ErrCornerNotFound)
	}
	return f, c, nil
}

// PredictionView is the facility directory as seen at a chosen date and slot.
type PredictionView struct {
	Facilities   []model.Facility `json:"facilities"`
	Date         string           `json:"date"`
	Slot         string           `json:"slot"`
	MealPeriod   string           `json:"mealPeriod"`
	IsPrediction bool             `json:"isPrediction"`
}

// Predict builds the view for date (YYYY-MM-DD) and slot (HH:MM). Empty values
// default to today and the current slot.
func (s *FacilityService) Predict(date, slot string) (*PredictionView, error) {
	v := validator{}

	day := s.predictor.Today()
	if date != "" {
		d, err := s.predictor.ParseDate(date)
		v.require(err == nil, "date", "must be YYYY-MM-DD")
		day = d
	}
	if slot == "" {
		slot = s.predictor.CurrentTimeSlot()
	} else {
		_, err := ParseSlot(slot)
		v.require(err == nil, "slot", "must be HH:MM")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	return &PredictionView{
		Facilities:   s.predictor.PredictAll(s.repo.List(), slot, day),
		Date:         day.Format(dateLayout),
		Slot:         slot,
		MealPeriod:   MealPeriodName(slot),
		IsPrediction: s.predictor.ShouldShowPrediction(day, slot),
	}, nil
}

// TimeSlots returns the slot grid and the slot containing now.
func (s *FacilityService) TimeSlots() ([]string, string) {
	return TimeSlots(), s.predictor.CurrentTimeSlot()
}
