package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// CalendarGormRepository is the provider directory and holiday source.
type CalendarGormRepository struct {
	db *gorm.DB
}

func NewCalendarGormRepository(db *gorm.DB) *CalendarGormRepository {
	return &CalendarGormRepository{db: db}
}

// --------------------------------------------------
// Mapping
// --------------------------------------------------

func toCalendar(p *models.Provider) (*calendar.ProviderCalendar, error) {
	c := calendar.NewProviderCalendar(p.ID)
	c.SlotGranularityMinutes = p.SlotGranularityMinutes
	c.BookingHorizonDays = p.BookingHorizonDays
	c.MinimumLeadMinutes = p.MinimumLeadMinutes
	c.Timezone = p.Timezone

	for _, b := range p.Bands {
		dt, err := calendar.ParseDayType(b.DayType)
		if err != nil {
			return nil, err
		}
		band, err := calendar.ParseTimeBand(b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		c.Bands[dt] = band
	}

	for _, cl := range p.Closures {
		c.ExceptionDates[calendar.DateOf(cl.Date.UTC())] = struct{}{}
	}

	return c, nil
}

func toProviderModel(cal *calendar.ProviderCalendar) *models.Provider {
	return &models.Provider{
		ID:                     cal.ProviderID,
		Name:                   cal.ProviderID,
		SlotGranularityMinutes: cal.SlotGranularityMinutes,
		BookingHorizonDays:     cal.BookingHorizonDays,
		MinimumLeadMinutes:     cal.MinimumLeadMinutes,
		Timezone:               cal.Timezone,
	}
}

// upsertProvider writes the provider row, overwriting the settings of an
// existing one. A zero lead is stored as 0.
func upsertProvider(tx *gorm.DB, p *models.Provider) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"slot_granularity_minutes",
			"booking_horizon_days",
			"minimum_lead_minutes",
			"timezone",
			"updated_at",
		}),
	}).Omit("Bands", "Closures").Create(p)
}

// --------------------------------------------------
// Directory
// --------------------------------------------------

func (r *CalendarGormRepository) GetCalendar(
	ctx context.Context,
	providerID string,
) (*calendar.ProviderCalendar, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Preload("Bands").
		Preload("Closures").
		Where("id = ?", providerID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, calendar.ErrProviderNotFound
		}
		return nil, httperr.ErrInternal("get calendar", err)
	}

	c, err := toCalendar(&p)
	if err != nil {
		return nil, httperr.ErrInternal("decode calendar", err)
	}
	return c, nil
}

func (r *CalendarGormRepository) Holidays(ctx context.Context) (calendar.HolidaySet, error) {
	var rows []models.Holiday
	if err := r.db.WithContext(ctx).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, httperr.ErrInternal("list holidays", err)
	}

	set := make(calendar.HolidaySet, len(rows))
	for _, h := range rows {
		set[calendar.DateOf(h.Date.UTC())] = struct{}{}
	}
	return set, nil
}

// --------------------------------------------------
// Admin edits
// --------------------------------------------------

// SaveCalendar replaces the provider's template and closures in one transaction.
func (r *CalendarGormRepository) SaveCalendar(
	ctx context.Context,
	cal *calendar.ProviderCalendar,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertProvider(tx, toProviderModel(cal)).Error; err != nil {
			return err
		}

		if err := tx.Where("provider_id = ?", cal.ProviderID).Delete(&models.WorkingBand{}).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_id = ?", cal.ProviderID).Delete(&models.ClosureDate{}).Error; err != nil {
			return err
		}

		bands := make([]models.WorkingBand, 0, len(cal.Bands))
		for _, dt := range calendar.DayTypes {
			band, ok := cal.Bands[dt]
			if !ok {
				continue
			}
			bands = append(bands, models.WorkingBand{
				ProviderID: cal.ProviderID,
				DayType:    string(dt),
				StartTime:  calendar.FormatClock(band.Start),
				EndTime:    calendar.FormatClock(band.End),
			})
		}
		if len(bands) > 0 {
			if err := tx.Create(&bands).Error; err != nil {
				return err
			}
		}

		closures := make([]models.ClosureDate, 0, len(cal.ExceptionDates))
		for d := range cal.ExceptionDates {
			closures = append(closures, models.ClosureDate{
				ProviderID: cal.ProviderID,
				Date:       d.Midnight(time.UTC),
			})
		}
		if len(closures) > 0 {
			if err := tx.Create(&closures).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return httperr.ErrInternal("save calendar", err)
	}
	return nil
}

func (r *CalendarGormRepository) ReplaceHolidays(
	ctx context.Context,
	holidays calendar.HolidaySet,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Holiday{}).Error; err != nil {
			return err
		}

		rows := make([]models.Holiday, 0, len(holidays))
		for _, d := range holidays.Dates() {
			rows = append(rows, models.Holiday{Date: d.Midnight(time.UTC)})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return httperr.ErrInternal("replace holidays", err)
	}
	return nil
}

// Compile-time check
var _ calendar.Store = (*CalendarGormRepository)(nil)
