package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
)

// fakeRedis is an in-memory stand-in for the three commands the cache uses.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	down bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// countingStore counts reads that reach the backing store.
type countingStore struct {
	*calendar.StaticDirectory
	calendarReads int
	holidayReads  int
}

func (s *countingStore) GetCalendar(ctx context.Context, id string) (*calendar.ProviderCalendar, error) {
	s.calendarReads++
	return s.StaticDirectory.GetCalendar(ctx, id)
}

func (s *countingStore) Holidays(ctx context.Context) (calendar.HolidaySet, error) {
	s.holidayReads++
	return s.StaticDirectory.Holidays(ctx)
}

func newFixture() (*countingStore, *fakeRedis, *CalendarCache) {
	cal := calendar.NewProviderCalendar("dr-kim")
	cal.Bands[calendar.DayWeekday] = calendar.TimeBand{Start: 9 * 60, End: 17 * 60}
	cal.Bands[calendar.DaySaturday] = calendar.TimeBand{Start: 18 * 60, End: 2 * 60}
	cal.ExceptionDates[calendar.Date{Year: 2026, Month: 3, Day: 11}] = struct{}{}

	store := &countingStore{
		StaticDirectory: calendar.NewStaticDirectory(
			calendar.NewHolidaySet(calendar.Date{Year: 2026, Month: 3, Day: 1}),
			cal,
		),
	}
	rdb := newFakeRedis()
	return store, rdb, NewCalendarCache(store, rdb, time.Hour*48, nil)
}

func TestCalendarCache_ReadThrough(t *testing.T) {
	store, _, c := newFixture()
	ctx := context.Background()

	first, err := c.GetCalendar(ctx, "dr-kim")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := c.GetCalendar(ctx, "dr-kim")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if store.calendarReads != 1 {
		t.Fatalf("expected a single store read, got %d", store.calendarReads)
	}
	if second.Bands[calendar.DaySaturday] != first.Bands[calendar.DaySaturday] {
		t.Fatalf("overnight band lost in cache round trip: %+v", second.Bands)
	}
	if !second.IsException(calendar.Date{Year: 2026, Month: 3, Day: 11}) {
		t.Fatalf("exception date lost in cache round trip")
	}
}

func TestCalendarCache_InvalidatesOnSave(t *testing.T) {
	store, _, c := newFixture()
	ctx := context.Background()

	_, _ = c.GetCalendar(ctx, "dr-kim")

	updated := calendar.NewProviderCalendar("dr-kim")
	updated.SlotGranularityMinutes = 60
	if err := c.SaveCalendar(ctx, updated); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := c.GetCalendar(ctx, "dr-kim")
	if got.SlotGranularityMinutes != 60 || store.calendarReads != 2 {
		t.Fatalf("expected fresh read after save, got %+v (reads=%d)", got, store.calendarReads)
	}
}

func TestCalendarCache_HolidayTTLCappedAtOneDay(t *testing.T) {
	store, rdb, c := newFixture()
	ctx := context.Background()

	set, err := c.Holidays(ctx)
	if err != nil || !set.Contains(calendar.Date{Year: 2026, Month: 3, Day: 1}) {
		t.Fatalf("holidays: %v (err=%v)", set, err)
	}
	_, _ = c.Holidays(ctx)

	if store.holidayReads != 1 {
		t.Fatalf("expected cached holidays, got %d reads", store.holidayReads)
	}
	if rdb.ttls[holidaysKey] != 24*time.Hour {
		t.Fatalf("expected holiday ttl capped at 24h, got %s", rdb.ttls[holidaysKey])
	}

	if err := c.ReplaceHolidays(ctx, calendar.NewHolidaySet()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	set, _ = c.Holidays(ctx)
	if len(set) != 0 || store.holidayReads != 2 {
		t.Fatalf("expected fresh empty set after replace, got %v", set)
	}
}

func TestCalendarCache_FallsBackWhenRedisDown(t *testing.T) {
	store, rdb, c := newFixture()
	rdb.down = true

	if _, err := c.GetCalendar(context.Background(), "dr-kim"); err != nil {
		t.Fatalf("expected store fallback, got %v", err)
	}
	if store.calendarReads != 1 {
		t.Fatalf("expected store read")
	}

	if _, err := c.GetCalendar(context.Background(), "nobody"); !errors.Is(err, calendar.ErrProviderNotFound) {
		t.Fatalf("expected provider_not_found, got %v", err)
	}
}
