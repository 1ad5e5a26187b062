package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiva/campusq/internal/model"
)

const (
	// waitingCounterStart is the last number handed out before startup;
	// the first ticket is #101.
	waitingCounterStart = 100

	// DefaultHistoryLimit caps per-session history, newest first.
	DefaultHistoryLimit = 10

	// advanceMinutesPerTick is how much estimatedTime drops per queue step.
	advanceMinutesPerTick = 3

	historyDateLayout = "2006-01-02 15:04"
)

// WaitingRepository stores one active ticket per session plus a capped history.
type WaitingRepository struct {
	mu           sync.RWMutex
	counter      int
	waitings     map[string]*model.Waiting
	history      map[string][]model.HistoryItem
	historyLimit int
}

// NewWaitingRepository creates an empty waiting store.
func NewWaitingRepository(historyLimit int) *WaitingRepository {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &WaitingRepository{
		counter:      waitingCounterStart,
		waitings:     make(map[string]*model.Waiting),
		history:      make(map[string][]model.HistoryItem),
		historyLimit: historyLimit,
	}
}

// Active returns the session's ticket, or nil.
func (r *WaitingRepository) Active(sessionID string) *model.Waiting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.waitings[sessionID]
	if !ok {
		return nil
	}
	c := *w
	return &c
}

// Create registers a ticket for the session against a snapshot of the corner.
//
// The existence check and the insert happen under one lock, so two concurrent
// registrations for the same session cannot both succeed.
func (r *WaitingRepository) Create(
	sessionID string,
	data model.InsertWaiting,
	corner model.Corner,
	now time.Time,
) (*model.Waiting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.waitings[sessionID]; exists {
		return nil, fmt.Errorf("create waiting for session %q: %w", sessionID, ErrActiveWaiting)
	}

	r.counter++
	w := &model.Waiting{
		ID:             uuid.NewString(),
		FacilityID:     data.FacilityID,
		FacilityName:   data.FacilityName,
		CornerID:       data.CornerID,
		CornerName:     data.CornerName,
		CornerType:     data.CornerType,
		Menu:           data.Menu,
		WaitingNumber:  r.counter,
		Status:         model.WaitingWaiting,
		RegisteredAt:   now,
		EstimatedTime:  corner.WaitTime,
		WaitingAhead:   corner.CurrentQueue,
		CurrentCalling: r.counter - corner.CurrentQueue - 1,
	}
	r.waitings[sessionID] = w

	c := *w
	return &c, nil
}

// Cancel removes the session's ticket and prepends a CANCELLED history entry.
func (r *WaitingRepository) Cancel(sessionID string, now time.Time) (*model.HistoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.waitings[sessionID]
	if !ok {
		return nil, fmt.Errorf("cancel waiting for session %q: %w", sessionID, ErrNoActiveWaiting)
	}

	item := model.HistoryItem{
		ID:         uuid.NewString(),
		Facility:   fmt.Sprintf("%s %s코너", w.FacilityName, w.CornerType),
		Date:       now.Format(historyDateLayout),
		Status:     model.WaitingCancelled,
		StatusText: "취소됨",
	}

	existing := r.history[sessionID]
	updated := make([]model.HistoryItem, 0, min(len(existing)+1, r.historyLimit))
	updated = append(updated, item)
	for _, h := range existing {
		if len(updated) == r.historyLimit {
			break
		}
		updated = append(updated, h)
	}
	r.history[sessionID] = updated
	delete(r.waitings, sessionID)

	return &item, nil
}

// History returns the session's history, newest first.
func (r *WaitingRepository) History(sessionID string) []model.HistoryItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.HistoryItem{}, r.history[sessionID]...)
}

// Advance moves every ticket with people ahead one step forward and returns
// how many tickets moved. Tickets at zero stay until cancelled.
func (r *WaitingRepository) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for _, w := range r.waitings {
		if w.WaitingAhead <= 0 {
			continue
		}
		w.WaitingAhead = max(0, w.WaitingAhead-1)
		w.EstimatedTime = max(0, w.EstimatedTime-advanceMinutesPerTick)
		w.CurrentCalling++
		moved++
	}
	return moved
}
