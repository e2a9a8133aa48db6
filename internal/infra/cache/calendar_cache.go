package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
)

const (
	calendarKeyPrefix = "calendar:"
	holidaysKey       = "holidays:all"

	// Holidays are refreshed at most daily.
	maxHolidayTTL = 24 * time.Hour
)

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// CalendarCache is a read-through cache in front of a calendar.Store. Admin
// edits go to the store first and then drop the cached entry. Redis failures
// fall back to the store.
type CalendarCache struct {
	next   calendar.Store
	client Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCalendarCache(next calendar.Store, client Client, ttl time.Duration, log *zap.Logger) *CalendarCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &CalendarCache{next: next, client: client, ttl: ttl, log: log}
}

func calendarKey(providerID string) string {
	return fmt.Sprintf("%s%s", calendarKeyPrefix, providerID)
}

func (c *CalendarCache) holidayTTL() time.Duration {
	if c.ttl <= 0 || c.ttl > maxHolidayTTL {
		return maxHolidayTTL
	}
	return c.ttl
}

// ===============================
// Wire format
// ===============================

type cachedBand struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type cachedCalendar struct {
	ProviderID  string                `json:"provider_id"`
	Bands       map[string]cachedBand `json:"bands"`
	Exceptions  []string              `json:"exceptions"`
	Granularity int                   `json:"granularity"`
	Horizon     int                   `json:"horizon"`
	Lead        int                   `json:"lead"`
	Timezone    string                `json:"timezone"`
}

func encodeCalendar(cal *calendar.ProviderCalendar) cachedCalendar {
	out := cachedCalendar{
		ProviderID:  cal.ProviderID,
		Bands:       make(map[string]cachedBand, len(cal.Bands)),
		Exceptions:  make([]string, 0, len(cal.ExceptionDates)),
		Granularity: cal.SlotGranularityMinutes,
		Horizon:     cal.BookingHorizonDays,
		Lead:        cal.MinimumLeadMinutes,
		Timezone:    cal.Timezone,
	}
	for dt, b := range cal.Bands {
		out.Bands[string(dt)] = cachedBand{Start: b.Start, End: b.End}
	}
	for d := range cal.ExceptionDates {
		out.Exceptions = append(out.Exceptions, d.String())
	}
	return out
}

func decodeCalendar(in cachedCalendar) (*calendar.ProviderCalendar, error) {
	cal := calendar.NewProviderCalendar(in.ProviderID)
	cal.SlotGranularityMinutes = in.Granularity
	cal.BookingHorizonDays = in.Horizon
	cal.MinimumLeadMinutes = in.Lead
	cal.Timezone = in.Timezone

	for k, b := range in.Bands {
		dt, err := calendar.ParseDayType(k)
		if err != nil {
			return nil, err
		}
		cal.Bands[dt] = calendar.TimeBand{Start: b.Start, End: b.End}
	}
	for _, s := range in.Exceptions {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return nil, err
		}
		cal.ExceptionDates[d] = struct{}{}
	}
	return cal, nil
}

// ===============================
// Directory
// ===============================

func (c *CalendarCache) GetCalendar(ctx context.Context, providerID string) (*calendar.ProviderCalendar, error) {
	key := calendarKey(providerID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached cachedCalendar
		if err := json.Unmarshal(raw, &cached); err == nil {
			if cal, err := decodeCalendar(cached); err == nil {
				return cal, nil
			}
		}
		c.log.Warn("discarding corrupt calendar cache entry", zap.String("provider_id", providerID))
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("calendar cache read failed", zap.String("provider_id", providerID), zap.Error(err))
	}

	cal, err := c.next.GetCalendar(ctx, providerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(encodeCalendar(cal)); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("calendar cache write failed", zap.String("provider_id", providerID), zap.Error(err))
		}
	}
	return cal, nil
}

func (c *CalendarCache) Holidays(ctx context.Context) (calendar.HolidaySet, error) {
	if raw, err := c.client.Get(ctx, holidaysKey).Bytes(); err == nil {
		var dates []string
		if err := json.Unmarshal(raw, &dates); err == nil {
			if set, err := parseHolidays(dates); err == nil {
				return set, nil
			}
		}
		c.log.Warn("discarding corrupt holiday cache entry")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("holiday cache read failed", zap.Error(err))
	}

	set, err := c.next.Holidays(ctx)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(set))
	for _, d := range set.Dates() {
		dates = append(dates, d.String())
	}
	if data, err := json.Marshal(dates); err == nil {
		if err := c.client.Set(ctx, holidaysKey, data, c.holidayTTL()).Err(); err != nil {
			c.log.Warn("holiday cache write failed", zap.Error(err))
		}
	}
	return set, nil
}

func parseHolidays(dates []string) (calendar.HolidaySet, error) {
	set := make(calendar.HolidaySet, len(dates))
	for _, s := range dates {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return nil, err
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// ===============================
// Admin edits
// ===============================

func (c *CalendarCache) SaveCalendar(ctx context.Context, cal *calendar.ProviderCalendar) error {
	if err := c.next.SaveCalendar(ctx, cal); err != nil {
		return err
	}
	c.invalidate(ctx, calendarKey(cal.ProviderID))
	return nil
}

func (c *CalendarCache) ReplaceHolidays(ctx context.Context, holidays calendar.HolidaySet) error {
	if err := c.next.ReplaceHolidays(ctx, holidays); err != nil {
		return err
	}
	c.invalidate(ctx, holidaysKey)
	return nil
}

func (c *CalendarCache) invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

var _ calendar.Store = (*CalendarCache)(nil)
