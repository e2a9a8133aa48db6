package calendar

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const CodeProviderNotFound = "provider_not_found"

var ErrProviderNotFound = httperr.ErrBusiness(CodeProviderNotFound)

// Directory supplies provider calendars. Implementations return ErrProviderNotFound
// for unknown ids.
type Directory interface {
	GetCalendar(ctx context.Context, providerID string) (*ProviderCalendar, error)
}

// HolidaySource supplies the current holiday set.
type HolidaySource interface {
	Holidays(ctx context.Context) (HolidaySet, error)
}

// Store is the write side used by admin edits.
type Store interface {
	Directory
	HolidaySource
	SaveCalendar(ctx context.Context, cal *ProviderCalendar) error
	ReplaceHolidays(ctx context.Context, holidays HolidaySet) error
}

// StaticDirectory keeps calendars and holidays in memory. It serves the
// memory-backed deployment and tests.
type StaticDirectory struct {
	mu        sync.RWMutex
	calendars map[string]*ProviderCalendar
	holidays  HolidaySet
}

func NewStaticDirectory(holidays HolidaySet, calendars ...*ProviderCalendar) *StaticDirectory {
	d := &StaticDirectory{
		calendars: make(map[string]*ProviderCalendar, len(calendars)),
		holidays:  holidays,
	}
	for _, c := range calendars {
		d.calendars[c.ProviderID] = c
	}
	return d
}

func (d *StaticDirectory) GetCalendar(_ context.Context, providerID string) (*ProviderCalendar, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.calendars[providerID]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return c, nil
}

func (d *StaticDirectory) Holidays(_ context.Context) (HolidaySet, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.holidays, nil
}

func (d *StaticDirectory) SaveCalendar(_ context.Context, cal *ProviderCalendar) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calendars[cal.ProviderID] = cal
	return nil
}

func (d *StaticDirectory) ReplaceHolidays(_ context.Context, holidays HolidaySet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holidays = holidays
	return nil
}

var _ Store = (*StaticDirectory)(nil)
