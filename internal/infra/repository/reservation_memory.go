package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

// MemoryLedger keeps reservations in process. Each provider-day owns its own
// claim map and each claim is a single LoadOrStore, so bookings for different
// keys never contend and nothing locks the ledger as a whole.
type MemoryLedger struct {
	// dayKey -> *sync.Map of start minute -> reservation id
	claims sync.Map

	// reservation id -> *memoryEntry
	records sync.Map
}

// Claim maps of days this far behind the sweep time are dropped. Those days
// can no longer be offered in any timezone.
const claimRetentionDays = 2

type dayKey struct {
	providerID string
	date       calendar.Date
}

type memoryEntry struct {
	mu sync.Mutex
	r  domain.Reservation
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) day(providerID string, date calendar.Date) *sync.Map {
	m, _ := l.claims.LoadOrStore(dayKey{providerID: providerID, date: date}, &sync.Map{})
	return m.(*sync.Map)
}

func (l *MemoryLedger) release(r *domain.Reservation) {
	if m, ok := l.claims.Load(dayKey{providerID: r.ProviderID, date: r.Date}); ok {
		m.(*sync.Map).CompareAndDelete(r.StartMinute, r.ID)
	}
}

// pruneBefore drops the claim maps of days before limit. Reservation records
// are kept for history.
func (l *MemoryLedger) pruneBefore(limit calendar.Date) {
	l.claims.Range(func(k, _ any) bool {
		if k.(dayKey).date.Before(limit) {
			l.claims.Delete(k)
		}
		return true
	})
}

// --------------------------------------------------
// Claims
// --------------------------------------------------

func (l *MemoryLedger) ListClaimed(
	_ context.Context,
	providerID string,
	date calendar.Date,
) ([]int, error) {

	claimed := []int{}
	if m, ok := l.claims.Load(dayKey{providerID: providerID, date: date}); ok {
		m.(*sync.Map).Range(func(k, _ any) bool {
			claimed = append(claimed, k.(int))
			return true
		})
	}

	sort.Ints(claimed)
	return claimed, nil
}

func (l *MemoryLedger) Claim(
	ctx context.Context,
	r *domain.Reservation,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, loaded := l.day(r.ProviderID, r.Date).LoadOrStore(r.StartMinute, r.ID); loaded {
		return domain.ErrSlotConflict
	}

	l.records.Store(r.ID, &memoryEntry{r: *r})
	return nil
}

// --------------------------------------------------
// Lookup
// --------------------------------------------------

func (l *MemoryLedger) entry(id string) (*memoryEntry, bool) {
	e, ok := l.records.Load(id)
	if !ok {
		return nil, false
	}
	return e.(*memoryEntry), true
}

func (l *MemoryLedger) Get(
	_ context.Context,
	id string,
) (*domain.Reservation, error) {

	e, ok := l.entry(id)
	if !ok {
		return nil, domain.ErrReservationNotFound
	}

	e.mu.Lock()
	r := e.r
	e.mu.Unlock()

	return &r, nil
}

func (l *MemoryLedger) snapshot(keep func(*domain.Reservation) bool) []domain.Reservation {
	out := []domain.Reservation{}
	l.records.Range(func(_, v any) bool {
		e := v.(*memoryEntry)
		e.mu.Lock()
		r := e.r
		e.mu.Unlock()

		if keep(&r) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// ListByPatient returns the patient's reservations, newest first.
func (l *MemoryLedger) ListByPatient(
	_ context.Context,
	patientID string,
) ([]domain.Reservation, error) {

	out := l.snapshot(func(r *domain.Reservation) bool {
		return r.PatientID == patientID
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListByProviderDate returns every reservation of the provider-day in slot order.
func (l *MemoryLedger) ListByProviderDate(
	_ context.Context,
	providerID string,
	date calendar.Date,
) ([]domain.Reservation, error) {

	out := l.snapshot(func(r *domain.Reservation) bool {
		return r.ProviderID == providerID && r.Date == date
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartMinute != out[j].StartMinute {
			return out[i].StartMinute < out[j].StartMinute
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (l *MemoryLedger) Transition(
	_ context.Context,
	id string,
	from []domain.Status,
	to domain.Status,
	at time.Time,
) (*domain.Reservation, error) {

	e, ok := l.entry(id)
	if !ok {
		return nil, domain.ErrReservationNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !statusIn(e.r.State, from) {
		r := e.r
		return &r, domain.ErrInvalidState
	}

	next := e.r
	if err := domain.Apply(&next, to, at); err != nil {
		r := e.r
		return &r, err
	}
	e.r = next

	if next.State.Terminal() {
		l.release(&next)
	}

	return &next, nil
}

func (l *MemoryLedger) ExpireHeld(
	_ context.Context,
	cutoff time.Time,
	at time.Time,
) ([]domain.Reservation, error) {

	expired := []domain.Reservation{}
	l.records.Range(func(_, v any) bool {
		e := v.(*memoryEntry)

		e.mu.Lock()
		if e.r.State == domain.StatusHeld && e.r.CreatedAt.Before(cutoff) {
			if err := domain.Expire(&e.r, at); err == nil {
				l.release(&e.r)
				expired = append(expired, e.r)
			}
		}
		e.mu.Unlock()

		return true
	})

	l.pruneBefore(calendar.DateOf(at.UTC()).AddDays(-claimRetentionDays))

	return expired, nil
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, c := range set {
		if c == s {
			return true
		}
	}
	return false
}

// Compile-time check
var _ domain.Ledger = (*MemoryLedger)(nil)
