package booking

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// Monday 2026-03-09 14:40 UTC
var now = time.Date(2026, 3, 9, 14, 40, 0, 0, time.UTC)

type fixture struct {
	dir    *calendar.StaticDirectory
	ledger *repository.MemoryLedger
	clock  *mutableClock

	available *GetAvailableSlots
	book      *BookSlot
	cancel    *CancelReservation
	confirm   *ConfirmReservation
	expire    *ExpireStaleHolds
}

type mutableClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *mutableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var _ timezone.Clock = (*mutableClock)(nil)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	day := calendar.NewProviderCalendar("dr-kim")
	day.Timezone = "UTC"
	day.Bands[calendar.DayWeekday] = calendar.TimeBand{Start: 9 * 60, End: 17 * 60}
	// Wednesday
	day.ExceptionDates[calendar.Date{Year: 2026, Month: 3, Day: 11}] = struct{}{}

	night := calendar.NewProviderCalendar("dr-night")
	night.Timezone = "UTC"
	night.SlotGranularityMinutes = 60
	night.Bands[calendar.DayWeekday] = calendar.TimeBand{Start: 18 * 60, End: 2 * 60}

	f := &fixture{
		dir:    calendar.NewStaticDirectory(calendar.NewHolidaySet(), day, night),
		ledger: repository.NewMemoryLedger(),
		clock:  &mutableClock{t: now},
	}

	f.available = NewGetAvailableSlots(f.dir, f.dir, f.ledger, f.clock)
	f.book = NewBookSlot(f.dir, f.dir, f.ledger, f.clock, nil)
	f.cancel = NewCancelReservation(f.ledger, f.clock, nil)
	f.confirm = NewConfirmReservation(f.ledger, f.clock, 10*time.Minute, nil)
	f.expire = NewExpireStaleHolds(f.ledger, f.clock, 10*time.Minute, nil)
	return f
}

func (f *fixture) times(t *testing.T, providerID, date string) []string {
	t.Helper()
	res, err := f.available.Execute(context.Background(), providerID, date)
	if err != nil {
		t.Fatalf("availability %s %s: %v", providerID, date, err)
	}
	return res.Times()
}

// ======================================================
// Availability
// ======================================================

func TestGetAvailableSlots_LeadTime(t *testing.T) {
	f := newFixture(t)

	got := f.times(t, "dr-kim", "2026-03-09")
	want := []string{"15:00", "15:30", "16:00", "16:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGetAvailableSlots_Overnight(t *testing.T) {
	f := newFixture(t)

	res, err := f.available.Execute(context.Background(), "dr-night", "2026-03-16")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	want := []string{"18:00", "19:00", "20:00", "21:00", "22:00", "23:00", "00:00", "01:00"}
	if !reflect.DeepEqual(res.Times(), want) {
		t.Fatalf("expected %v, got %v", want, res.Times())
	}
	if res.Date.String() != "2026-03-16" {
		t.Fatalf("expected slots attributed to monday, got %s", res.Date)
	}
}

func TestGetAvailableSlots_ClosedDaysAreEmpty(t *testing.T) {
	f := newFixture(t)

	for _, d := range []string{
		"2026-03-11", // exception wednesday
		"2026-03-14", // saturday, no band
		"2026-03-06", // past
		"2026-05-01", // beyond horizon
	} {
		res, err := f.available.Execute(context.Background(), "dr-kim", d)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", d, err)
		}
		if res.Slots == nil || len(res.Slots) != 0 {
			t.Fatalf("%s: expected empty list, got %v", d, res.Times())
		}
	}
}

func TestGetAvailableSlots_Errors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.available.Execute(context.Background(), "nobody", "2026-03-10"); !errors.Is(err, calendar.ErrProviderNotFound) {
		t.Fatalf("expected provider_not_found, got %v", err)
	}
	if _, err := f.available.Execute(context.Background(), "dr-kim", "10/03/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected invalid_date, got %v", err)
	}
}

func TestGetAvailableSlots_Idempotent(t *testing.T) {
	f := newFixture(t)

	first := f.times(t, "dr-kim", "2026-03-10")
	second := f.times(t, "dr-kim", "2026-03-10")
	if !reflect.DeepEqual(first, second) || len(first) != 16 {
		t.Fatalf("expected identical 16-slot sequences, got %v / %v", first, second)
	}
}

// ======================================================
// Booking
// ======================================================

func TestBookSlot_HoldsAndRemovesSlot(t *testing.T) {
	f := newFixture(t)

	r, err := f.book.Execute(context.Background(), BookSlotInput{
		ProviderID: "dr-kim",
		Date:       "2026-03-10",
		StartTime:  "09:30",
		PatientID:  "patient-1",
		Notes:      "toothache",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if r.State != reservation.StatusHeld || r.StartTime() != "09:30" || !r.CreatedAt.Equal(now) {
		t.Fatalf("unexpected reservation %+v", r)
	}

	for _, tm := range f.times(t, "dr-kim", "2026-03-10") {
		if tm == "09:30" {
			t.Fatalf("booked slot still offered")
		}
	}
}

func TestBookSlot_OvernightSpill(t *testing.T) {
	f := newFixture(t)

	r, err := f.book.Execute(context.Background(), BookSlotInput{
		ProviderID: "dr-night",
		Date:       "2026-03-16",
		StartTime:  "01:00",
		PatientID:  "patient-1",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if r.Date.String() != "2026-03-16" || !r.NextDay() {
		t.Fatalf("expected monday reservation spilling past midnight, got %+v", r)
	}

	// The same wall-clock time on tuesday's own band is a different key.
	if _, err := f.book.Execute(context.Background(), BookSlotInput{
		ProviderID: "dr-night",
		Date:       "2026-03-17",
		StartTime:  "01:00",
		PatientID:  "patient-2",
	}); err != nil {
		t.Fatalf("expected tuesday 01:00 to be free, got %v", err)
	}
}

func TestBookSlot_ValidationRejectedBeforeLedger(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		in   BookSlotInput
		code string
	}{
		{"bad date", BookSlotInput{ProviderID: "dr-kim", Date: "2026-02-30", StartTime: "09:00", PatientID: "p"}, CodeInvalidDate},
		{"bad time", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "9am", PatientID: "p"}, CodeInvalidTime},
		{"off grid", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "09:15", PatientID: "p"}, CodeGranularityMismatch},
		{"no patient", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "09:00", PatientID: " "}, reservation.CodeInvalidPatient},
		{"unknown provider", BookSlotInput{ProviderID: "nobody", Date: "2026-03-10", StartTime: "09:00", PatientID: "p"}, calendar.CodeProviderNotFound},
		{"closed day", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-11", StartTime: "09:00", PatientID: "p"}, reservation.CodeSlotNotAvailable},
		{"too soon", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-09", StartTime: "14:30", PatientID: "p"}, reservation.CodeSlotNotAvailable},
		{"after closing", BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "17:00", PatientID: "p"}, reservation.CodeSlotNotAvailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.book.Execute(context.Background(), tc.in)
			if !httperr.IsBusiness(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	for _, d := range []string{"2026-03-09", "2026-03-10"} {
		date, _ := calendar.ParseDate(d)
		claimed, _ := f.ledger.ListClaimed(context.Background(), "dr-kim", date)
		if len(claimed) != 0 {
			t.Fatalf("ledger touched by rejected bookings: %v", claimed)
		}
	}
}

func TestBookSlot_ConcurrentSameKey(t *testing.T) {
	f := newFixture(t)

	const n = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		held      int
		conflicts int
	)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := f.book.Execute(context.Background(), BookSlotInput{
				ProviderID: "dr-kim",
				Date:       "2026-03-10",
				StartTime:  "10:00",
				PatientID:  "patient",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				held++
			case errors.Is(err, reservation.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if held != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 hold and %d conflicts, got %d / %d", n-1, held, conflicts)
	}
}

// ======================================================
// Lifecycle
// ======================================================

func TestCancel_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.times(t, "dr-kim", "2026-03-10")

	r, err := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "11:00", PatientID: "p"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.confirm.Execute(ctx, r.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	cancelled, err := f.cancel.Execute(ctx, r.ID)
	if err != nil || cancelled.State != reservation.StatusCancelled {
		t.Fatalf("cancel: %+v (err=%v)", cancelled, err)
	}

	if after := f.times(t, "dr-kim", "2026-03-10"); !reflect.DeepEqual(before, after) {
		t.Fatalf("expected slot back in the pool, got %v", after)
	}

	again, err := f.cancel.Execute(ctx, r.ID)
	if err != nil || again.State != reservation.StatusCancelled {
		t.Fatalf("expected idempotent cancel, got %+v (err=%v)", again, err)
	}

	if _, err := f.cancel.Execute(ctx, "missing"); !errors.Is(err, reservation.ErrReservationNotFound) {
		t.Fatalf("expected reservation_not_found, got %v", err)
	}
}

func TestConfirm_States(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "12:00", PatientID: "p"})

	confirmed, err := f.confirm.Execute(ctx, r.ID)
	if err != nil || confirmed.State != reservation.StatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("confirm: %+v (err=%v)", confirmed, err)
	}

	if again, err := f.confirm.Execute(ctx, r.ID); err != nil || again.State != reservation.StatusConfirmed {
		t.Fatalf("expected repeat confirm to be a no-op, got %+v (err=%v)", again, err)
	}

	_, _ = f.cancel.Execute(ctx, r.ID)
	if _, err := f.confirm.Execute(ctx, r.ID); !errors.Is(err, reservation.ErrInvalidState) {
		t.Fatalf("expected invalid_state after cancel, got %v", err)
	}
}

func TestConfirm_LateHoldExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "12:30", PatientID: "p"})

	f.clock.Advance(11 * time.Minute)

	if _, err := f.confirm.Execute(ctx, r.ID); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("expected hold_expired, got %v", err)
	}

	got, _ := f.ledger.Get(ctx, r.ID)
	if got.State != reservation.StatusExpired {
		t.Fatalf("expected expired hold, got %s", got.State)
	}
	if _, err := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "12:30", PatientID: "q"}); err != nil {
		t.Fatalf("expected slot to be free again, got %v", err)
	}
}

func TestExpireStaleHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "13:00", PatientID: "p"})
	kept, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "13:30", PatientID: "p"})
	if _, err := f.confirm.Execute(ctx, kept.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	f.clock.Advance(15 * time.Minute)

	expired, err := f.expire.Execute(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != stale.ID {
		t.Fatalf("expected only the unconfirmed hold to expire, got %+v", expired)
	}

	if again, _ := f.expire.Execute(ctx); len(again) != 0 {
		t.Fatalf("expected second sweep to be a no-op, got %+v", again)
	}

	date, _ := calendar.ParseDate("2026-03-10")
	claimed, _ := f.ledger.ListClaimed(ctx, "dr-kim", date)
	if !reflect.DeepEqual(claimed, []int{13*60 + 30}) {
		t.Fatalf("expected only the confirmed key claimed, got %v", claimed)
	}
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "15:00", PatientID: "p-1"})
	f.clock.Advance(time.Minute)
	b, _ := f.book.Execute(ctx, BookSlotInput{ProviderID: "dr-kim", Date: "2026-03-10", StartTime: "09:00", PatientID: "p-1"})
	_, _ = f.cancel.Execute(ctx, a.ID)

	history, err := NewListPatientReservations(f.ledger).Execute(ctx, "p-1")
	if err != nil || len(history) != 2 || history[0].ID != b.ID {
		t.Fatalf("unexpected history %+v (err=%v)", history, err)
	}
	if _, err := NewListPatientReservations(f.ledger).Execute(ctx, ""); !errors.Is(err, reservation.ErrInvalidPatient) {
		t.Fatalf("expected invalid_patient, got %v", err)
	}

	day, err := NewListProviderDay(f.dir, f.ledger).Execute(ctx, "dr-kim", "2026-03-10")
	if err != nil || len(day) != 2 || day[0].StartTime() != "09:00" || day[1].State != reservation.StatusCancelled {
		t.Fatalf("unexpected day sheet %+v (err=%v)", day, err)
	}
	if _, err := NewListProviderDay(f.dir, f.ledger).Execute(ctx, "nobody", "2026-03-10"); !errors.Is(err, calendar.ErrProviderNotFound) {
		t.Fatalf("expected provider_not_found, got %v", err)
	}
}
