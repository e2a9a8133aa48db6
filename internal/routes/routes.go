package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
)

// Deps are the singletons built in main.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Calendar calendar.Store
	Ledger   reservation.Ledger
	Users    handlers.UserFinder
	Audit    *audit.Dispatcher
	Clock    timezone.Clock

	// DB is nil for the in-memory deployment; the audit log listing needs it.
	DB *gorm.DB
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config.AllowedOrigins()))

	// ======================================================
	// USE CASES
	// ======================================================
	availableUC := booking.NewGetAvailableSlots(d.Calendar, d.Calendar, d.Ledger, d.Clock)
	bookUC := booking.NewBookSlot(d.Calendar, d.Calendar, d.Ledger, d.Clock, d.Audit)
	getUC := booking.NewGetReservation(d.Ledger)
	confirmUC := booking.NewConfirmReservation(d.Ledger, d.Clock, d.Config.HoldTTL, d.Audit)
	cancelUC := booking.NewCancelReservation(d.Ledger, d.Clock, d.Audit)
	historyUC := booking.NewListPatientReservations(d.Ledger)
	dayUC := booking.NewListProviderDay(d.Calendar, d.Ledger)

	getCalendarUC := booking.NewGetProviderCalendar(d.Calendar)
	updateCalendarUC := booking.NewUpdateProviderCalendar(d.Calendar, d.Audit).
		WithDefaultTimezone(d.Config.DefaultTimezone)
	listHolidaysUC := booking.NewListHolidays(d.Calendar)
	replaceHolidaysUC := booking.NewReplaceHolidays(d.Calendar, d.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(availableUC, bookUC)
	reservationHandler := handlers.NewReservationHandler(getUC, confirmUC, cancelUC, historyUC)
	calendarHandler := handlers.NewCalendarHandler(getCalendarUC, updateCalendarUC, dayUC)
	holidaysHandler := handlers.NewHolidaysHandler(listHolidaysUC, replaceHolidaysUC)
	authHandler := handlers.NewAuthHandler(d.Users, d.Config, d.Audit)
	meHandler := handlers.NewMeHandler()

	bookingLimiter := middleware.RateLimitMiddleware(
		d.Config.BookingRatePerSec,
		d.Config.BookingRateBurst,
		d.Logger,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC / PATIENT
		// ------------------------------
		api.GET("/providers/:providerID/availability", availabilityHandler.Availability)
		api.POST("/providers/:providerID/reservations", bookingLimiter, availabilityHandler.CreateReservation)

		api.GET("/reservations/:id", reservationHandler.Get)
		api.PATCH("/reservations/:id/confirm", reservationHandler.Confirm)
		api.PATCH("/reservations/:id/cancel", reservationHandler.Cancel)

		api.GET("/patients/:patientID/reservations", reservationHandler.PatientHistory)

		api.GET("/holidays", holidaysHandler.List)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(
			middleware.AuthMiddleware(d.Config),
			middleware.RequireRole(repository.RoleAdmin),
		)
		{
			admin.GET("/me", meHandler.GetMe)

			admin.GET("/providers/:providerID/calendar", calendarHandler.Get)
			admin.PUT("/providers/:providerID/calendar", calendarHandler.Update)
			admin.GET("/providers/:providerID/reservations", calendarHandler.DaySheet)

			admin.PUT("/holidays", holidaysHandler.Replace)

			if d.DB != nil {
				auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
