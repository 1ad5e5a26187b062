package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shiva/campusq/internal/model"
)

func plazaKorean() model.InsertWaiting {
	return model.InsertWaiting{
		FacilityID:   "hanyang_plaza",
		FacilityName: "학생복지관 (한양플라자)",
		CornerID:     "hp_korean",
		CornerName:   "한식코너",
		CornerType:   "한식",
		Menu:         "된장찌개 + 제육볶음",
	}
}

func TestRegister_SnapshotsCorner(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	w, err := env.waiting.Register("s1", plazaKorean())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if w.WaitingNumber != 101 {
		t.Errorf("WaitingNumber = %d, want 101", w.WaitingNumber)
	}
	if w.Status != model.WaitingWaiting {
		t.Errorf("Status = %s", w.Status)
	}
	if w.EstimatedTime != 12 || w.WaitingAhead != 8 {
		t.Errorf("snapshot = (eta %d, ahead %d), want (12, 8)", w.EstimatedTime, w.WaitingAhead)
	}
	if w.CurrentCalling != 101-8-1 {
		t.Errorf("CurrentCalling = %d, want %d", w.CurrentCalling, 101-8-1)
	}
	if !w.RegisteredAt.Equal(env.clock.Now()) {
		t.Errorf("RegisteredAt = %v", w.RegisteredAt)
	}
}

func TestRegister_RefusesSecondTicket(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	if _, err := env.waiting.Register("s1", plazaKorean()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	other := plazaKorean()
	other.CornerID = "hp_western"
	_, err := env.waiting.Register("s1", other)
	if !errors.Is(err, ErrActiveWaitingExists) {
		t.Fatalf("second Register err = %v, want ErrActiveWaitingExists", err)
	}

	// An invalid payload still reports the existing ticket first.
	_, err = env.waiting.Register("s1", model.InsertWaiting{})
	if !errors.Is(err, ErrActiveWaitingExists) {
		t.Fatalf("invalid payload err = %v, want ErrActiveWaitingExists", err)
	}
}

func TestRegister_ConcurrentSameSession(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.waiting.Register("same", plazaKorean()); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Errorf("successful registrations = %d, want 1", success)
	}
}

func TestRegister_Failures(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	var verr *ValidationError
	if _, err := env.waiting.Register("v", model.InsertWaiting{FacilityID: "hanyang_plaza"}); !errors.As(err, &verr) {
		t.Errorf("missing fields err = %v, want *ValidationError", err)
	} else if _, ok := verr.Fields["cornerId"]; !ok {
		t.Errorf("validation fields = %v, want cornerId", verr.Fields)
	}

	bad := plazaKorean()
	bad.FacilityID = "nowhere"
	if _, err := env.waiting.Register("f", bad); !errors.Is(err, ErrFacilityNotFound) {
		t.Errorf("unknown facility err = %v", err)
	}

	bad = plazaKorean()
	bad.CornerID = "hp_sushi"
	if _, err := env.waiting.Register("c", bad); !errors.Is(err, ErrCornerNotFound) {
		t.Errorf("unknown corner err = %v", err)
	}

	full := model.InsertWaiting{
		FacilityID: "central_library", FacilityName: "중앙도서관",
		CornerID: "lib_2f", CornerName: "2층 자유석", CornerType: "자유석",
	}
	if _, err := env.waiting.Register("full", full); !errors.Is(err, ErrCornerFull) {
		t.Errorf("full corner err = %v, want ErrCornerFull", err)
	}
	if env.waiting.Active("full") != nil {
		t.Error("a failed registration left a ticket behind")
	}
}

func TestCancel_MovesTicketToHistory(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 5, 0, 0, kst))

	if err := env.waiting.Cancel("s1"); !errors.Is(err, ErrNoActiveWaiting) {
		t.Fatalf("Cancel without ticket err = %v", err)
	}

	if _, err := env.waiting.Register("s1", plazaKorean()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := env.waiting.Cancel("s1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if env.waiting.Active("s1") != nil {
		t.Error("ticket still active after cancel")
	}

	h := env.waiting.History("s1")
	if len(h) != 1 {
		t.Fatalf("history len = %d, want 1", len(h))
	}
	want := model.HistoryItem{
		ID:         h[0].ID,
		Facility:   "학생복지관 (한양플라자) 한식코너",
		Date:       "2026-03-02 12:05",
		Status:     model.WaitingCancelled,
		StatusText: "취소됨",
	}
	if h[0] != want {
		t.Errorf("history[0] = %+v, want %+v", h[0], want)
	}
}

func TestCancel_HistoryCappedNewestFirst(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 8, 0, 0, 0, kst))

	for i := 0; i < 11; i++ {
		if _, err := env.waiting.Register("s1", plazaKorean()); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
		if err := env.waiting.Cancel("s1"); err != nil {
			t.Fatalf("Cancel %d: %v", i, err)
		}
		env.clock.Advance(time.Minute)
	}

	h := env.waiting.History("s1")
	if len(h) != 10 {
		t.Fatalf("history len = %d, want 10", len(h))
	}
	// The 11th cancel happened at 08:10, the oldest kept one at 08:01.
	if h[0].Date != "2026-03-02 08:10" {
		t.Errorf("newest = %s, want 08:10", h[0].Date)
	}
	if h[9].Date != "2026-03-02 08:01" {
		t.Errorf("oldest = %s, want 08:01", h[9].Date)
	}
	for i := 1; i < len(h); i++ {
		if h[i-1].Date < h[i].Date {
			t.Fatalf("history not newest first at %d: %s before %s", i, h[i-1].Date, h[i].Date)
		}
	}
}

func TestAdvance(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	w, err := env.waiting.Register("s1", plazaKorean())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 1; i <= 10; i++ {
		env.waiting.Advance()
		got := env.waiting.Active("s1")
		wantAhead := max(0, w.WaitingAhead-i)
		if got.WaitingAhead != wantAhead {
			t.Fatalf("tick %d: ahead = %d, want %d", i, got.WaitingAhead, wantAhead)
		}
		if got.EstimatedTime < 0 {
			t.Fatalf("tick %d: negative estimatedTime", i)
		}
	}

	final := env.waiting.Active("s1")
	if final.WaitingAhead != 0 || final.EstimatedTime != 0 {
		t.Errorf("final = (ahead %d, eta %d), want zeros", final.WaitingAhead, final.EstimatedTime)
	}
	// currentCalling only moves while someone is ahead.
	if want := w.CurrentCalling + w.WaitingAhead; final.CurrentCalling != want {
		t.Errorf("CurrentCalling = %d, want %d", final.CurrentCalling, want)
	}
	if n := env.waiting.Advance(); n != 0 {
		t.Errorf("Advance on drained queue moved %d", n)
	}
}

func TestRegister_NumbersAreGlobal(t *testing.T) {
	env := newTestEnv(time.Date(2026, 3, 2, 12, 0, 0, 0, kst))

	for i := 0; i < 3; i++ {
		w, err := env.waiting.Register(fmt.Sprintf("s%d", i), plazaKorean())
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if w.WaitingNumber != 101+i {
			t.Errorf("ticket %d number = %d", i, w.WaitingNumber)
		}
	}
}
