package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

var (
	monday = calendar.Date{Year: 2026, Month: time.March, Day: 9}
	t0     = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
)

func held(minute int, patient string, at time.Time) *domain.Reservation {
	return domain.NewHeld("dr-kim", monday, minute, patient, "", at)
}

func TestMemoryLedger_ConcurrentClaimsSameKey(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	const n = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := ledger.Claim(ctx, held(600, fmt.Sprintf("p-%d", i), t0))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d / %d", n-1, wins, conflicts)
	}

	claimed, _ := ledger.ListClaimed(ctx, "dr-kim", monday)
	if !reflect.DeepEqual(claimed, []int{600}) {
		t.Fatalf("expected one claimed key, got %v", claimed)
	}
}

func TestMemoryLedger_DifferentKeysDoNotConflict(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- ledger.Claim(ctx, held(540+i*30, "p", t0))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}

	claimed, _ := ledger.ListClaimed(ctx, "dr-kim", monday)
	if len(claimed) != 16 || claimed[0] != 540 || claimed[15] != 540+15*30 {
		t.Fatalf("expected 16 ascending keys, got %v", claimed)
	}
}

func TestMemoryLedger_CancelReleasesKey(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	first := held(600, "p-1", t0)
	if err := ledger.Claim(ctx, first); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := ledger.Transition(ctx, first.ID, []domain.Status{domain.StatusHeld}, domain.StatusConfirmed, t0); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, err := ledger.Transition(ctx, first.ID, domain.ActiveStatuses, domain.StatusCancelled, t0.Add(time.Minute))
	if err != nil || got.State != domain.StatusCancelled || got.CancelledAt == nil {
		t.Fatalf("cancel: %+v (err=%v)", got, err)
	}

	claimed, _ := ledger.ListClaimed(ctx, "dr-kim", monday)
	if len(claimed) != 0 {
		t.Fatalf("expected key released, got %v", claimed)
	}

	if err := ledger.Claim(ctx, held(600, "p-2", t0)); err != nil {
		t.Fatalf("expected re-claim after cancel, got %v", err)
	}
}

func TestMemoryLedger_TransitionRejectsTerminal(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	r := held(600, "p-1", t0)
	_ = ledger.Claim(ctx, r)
	_, _ = ledger.Transition(ctx, r.ID, domain.ActiveStatuses, domain.StatusCancelled, t0)

	got, err := ledger.Transition(ctx, r.ID, []domain.Status{domain.StatusHeld}, domain.StatusConfirmed, t0)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}
	if got == nil || got.State != domain.StatusCancelled {
		t.Fatalf("expected current record alongside the error, got %+v", got)
	}

	if _, err := ledger.Transition(ctx, "missing", domain.ActiveStatuses, domain.StatusCancelled, t0); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected reservation_not_found, got %v", err)
	}
}

func TestMemoryLedger_ExpireHeld(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	stale := held(540, "p-1", t0)
	fresh := held(570, "p-2", t0.Add(9*time.Minute))
	confirmed := held(600, "p-3", t0)

	for _, r := range []*domain.Reservation{stale, fresh, confirmed} {
		if err := ledger.Claim(ctx, r); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	_, _ = ledger.Transition(ctx, confirmed.ID, []domain.Status{domain.StatusHeld}, domain.StatusConfirmed, t0)

	now := t0.Add(12 * time.Minute)
	expired, err := ledger.ExpireHeld(ctx, now.Add(-10*time.Minute), now)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != stale.ID || expired[0].State != domain.StatusExpired {
		t.Fatalf("expected only the stale hold to expire, got %+v", expired)
	}

	again, _ := ledger.ExpireHeld(ctx, now.Add(-10*time.Minute), now)
	if len(again) != 0 {
		t.Fatalf("expected sweep to be idempotent, got %+v", again)
	}

	claimed, _ := ledger.ListClaimed(ctx, "dr-kim", monday)
	if !reflect.DeepEqual(claimed, []int{570, 600}) {
		t.Fatalf("expected 540 released, got %v", claimed)
	}
}

func TestMemoryLedger_SweepRacesBookings(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_ = ledger.Claim(ctx, held(i*30, "old", t0))
	}

	now := t0.Add(time.Hour)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = ledger.ExpireHeld(ctx, now.Add(-10*time.Minute), now)
	}()

	var won int
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			for {
				err := ledger.Claim(ctx, held(i*30, "new", now))
				if err == nil {
					won++
					break
				}
				if !errors.Is(err, domain.ErrSlotConflict) {
					t.Errorf("unexpected error %v", err)
					return
				}
			}
		}
	}()
	wg.Wait()

	if won != 20 {
		t.Fatalf("expected every released key to be re-claimed, got %d", won)
	}

	day, _ := ledger.ListByProviderDate(ctx, "dr-kim", monday)
	live := map[int]int{}
	for _, r := range day {
		if r.State.Active() {
			live[r.StartMinute]++
		}
	}
	for minute, n := range live {
		if n != 1 {
			t.Fatalf("minute %d has %d live reservations", minute, n)
		}
	}
}

func TestMemoryLedger_ListByPatientNewestFirst(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	older := held(540, "p-1", t0)
	newer := held(600, "p-1", t0.Add(time.Minute))
	other := held(570, "p-2", t0)
	for _, r := range []*domain.Reservation{older, newer, other} {
		_ = ledger.Claim(ctx, r)
	}

	got, _ := ledger.ListByPatient(ctx, "p-1")
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("unexpected history %+v", got)
	}

	if r, err := ledger.Get(ctx, other.ID); err != nil || r.PatientID != "p-2" {
		t.Fatalf("get: %+v (err=%v)", r, err)
	}
}

func TestMemoryLedger_ExpireHeldPrunesPastDays(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	lastMonth := calendar.Date{Year: 2026, Month: time.February, Day: 2}
	old := domain.NewHeld("dr-kim", lastMonth, 540, "p-1", "", t0.AddDate(0, 0, -35))
	current := held(540, "p-2", t0)

	for _, r := range []*domain.Reservation{old, current} {
		if err := ledger.Claim(ctx, r); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	if _, err := ledger.Transition(ctx, old.ID, []domain.Status{domain.StatusHeld}, domain.StatusConfirmed, t0.AddDate(0, 0, -35)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := ledger.ExpireHeld(ctx, t0.Add(-time.Hour), t0); err != nil {
		t.Fatalf("expire: %v", err)
	}

	if _, ok := ledger.claims.Load(dayKey{providerID: "dr-kim", date: lastMonth}); ok {
		t.Fatalf("expected claim map of a past day to be dropped")
	}
	if claimed, _ := ledger.ListClaimed(ctx, "dr-kim", monday); !reflect.DeepEqual(claimed, []int{540}) {
		t.Fatalf("expected today's claims to survive, got %v", claimed)
	}

	r, err := ledger.Get(ctx, old.ID)
	if err != nil || r.State != domain.StatusConfirmed {
		t.Fatalf("expected the record itself to stay readable, got %+v (err=%v)", r, err)
	}

	if _, err := ledger.Transition(ctx, old.ID, []domain.Status{domain.StatusConfirmed}, domain.StatusCancelled, t0); err != nil {
		t.Fatalf("cancel after prune: %v", err)
	}
	if _, ok := ledger.claims.Load(dayKey{providerID: "dr-kim", date: lastMonth}); ok {
		t.Fatalf("releasing a pruned day must not recreate its claim map")
	}
}
