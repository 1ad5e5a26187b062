package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shiva/campusq/internal/model"
	"github.com/shiva/campusq/internal/repository"
)

// ─── Waiting Errors ─────────────────────────────────────────

var (
	// ErrActiveWaitingExists is returned when the session already holds a ticket.
	ErrActiveWaitingExists = repository.ErrActiveWaiting

	// ErrNoActiveWaiting is returned when there is nothing to cancel.
	ErrNoActiveWaiting = repository.ErrNoActiveWaiting

	// ErrCornerFull is returned when the corner is at maximum congestion.
	ErrCornerFull = errors.New("corner is full")
)

// ─── WaitingService ─────────────────────────────────────────

// WaitingService runs the virtual queue: one ticket per session, advanced by
// the scheduler and moved to history on cancellation.
type WaitingService struct {
	facilities *FacilityService
	waitings   *repository.WaitingRepository
	predictor  *Predictor
}

// NewWaitingService creates a waiting service.
func NewWaitingService(
	facilities *FacilityService,
	waitings *repository.WaitingRepository,
	predictor *Predictor,
) *WaitingService {
	return &WaitingService{
		facilities: facilities,
		waitings:   waitings,
		predictor:  predictor,
	}
}

// Active returns the session's ticket, or nil.
func (s *WaitingService) Active(sessionID string) *model.Waiting {
	return s.waitings.Active(sessionID)
}

// Register issues a ticket for the corner named in data.
//
// Checks run in this order: existing ticket, payload, facility, corner,
// corner full. The repository repeats the existing-ticket check under its
// lock, so a concurrent duplicate still fails with ErrActiveWaitingExists.
func (s *WaitingService) Register(sessionID string, data model.InsertWaiting) (*model.Waiting, error) {
	if s.waitings.Active(sessionID) != nil {
		return nil, fmt.Errorf("register waiting: %w", ErrActiveWaitingExists)
	}
	if err := validateInsertWaiting(data); err != nil {
		return nil, err
	}

	_, corner, err := s.facilities.Corner(data.FacilityID, data.CornerID)
	if err != nil {
		return nil, err
	}
	if corner.Congestion >= model.MaxCongestion {
		return nil, fmt.Errorf("register waiting at %s/%s: %w", data.FacilityID, data.CornerID, ErrCornerFull)
	}

	w, err := s.waitings.Create(sessionID, data, *corner, s.predictor.Now())
	if err != nil {
		return nil, err
	}

	log.Printf("[waiting] ✓ Ticket #%d at %s/%s (ahead=%d, eta=%dm)",
		w.WaitingNumber, w.FacilityID, w.CornerID, w.WaitingAhead, w.EstimatedTime)
	return w, nil
}

// Cancel drops the session's ticket and records it in history.
func (s *WaitingService) Cancel(sessionID string) error {
	item, err := s.waitings.Cancel(sessionID, s.predictor.Now())
	if err != nil {
		return err
	}
	log.Printf("[waiting] Cancelled ticket (%s)", item.Facility)
	return nil
}

// History returns the session's finished tickets, newest first.
func (s *WaitingService) History(sessionID string) []model.HistoryItem {
	return s.waitings.History(sessionID)
}

// Advance moves every queue one step. Called by the scheduler.
func (s *WaitingService) Advance() int {
	return s.waitings.Advance()
}

func validateInsertWaiting(d model.InsertWaiting) error {
	v := validator{}
	v.require(strings.TrimSpace(d.FacilityID) != "", "facilityId", "required")
	v.require(strings.TrimSpace(d.FacilityName) != "", "facilityName", "required")
	v.require(strings.TrimSpace(d.CornerID) != "", "cornerId", "required")
	v.require(strings.TrimSpace(d.CornerName) != "", "cornerName", "required")
	v.require(strings.TrimSpace(d.CornerType) != "", "cornerType", "required")
	return v.err()
}
