package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinic-scheduler/internal/db"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/routes"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/clinic-scheduler/internal/worker"
)

type userStore interface {
	handlers.UserFinder
	EnsureAdmin(ctx context.Context, email, password string) error
}

func main() {

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		db       *gorm.DB
		store    calendar.Store
		ledger   reservation.Ledger
		users    userStore
		auditLog audit.Sink
	)

	if cfg.UseMemoryLedger() {
		log.Warn("running with in-memory storage, data is lost on restart")

		store = calendar.NewStaticDirectory(calendar.NewHolidaySet())
		ledger = repository.NewMemoryLedger()
		users = repository.NewMemoryUserRepository()
	} else {
		var err error
		db, err = dbpkg.NewDB(cfg)
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		if err := dbpkg.Migrate(ctx, db, log); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}

		store = repository.NewCalendarGormRepository(db)
		ledger = repository.NewReservationGormRepository(db)
		users = repository.NewUserGormRepository(db)
		auditLog = audit.New(db)
	}

	if cfg.RedisEnabled() {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()

		store = cache.NewCalendarCache(store, client, cfg.CalendarCacheTTL, log)
		log.Info("calendar cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.AdminEmail != "" {
		if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal("failed to seed admin", zap.Error(err))
		}
	}

	dispatcher := audit.NewDispatcher(auditLog, log)
	clock := timezone.SystemClock{}

	// ======================================================
	// HOLD SWEEPER
	// ======================================================
	sweeper := worker.NewHoldSweeper(
		booking.NewExpireStaleHolds(ledger, clock, cfg.HoldTTL, dispatcher),
		log,
		worker.SweeperConfig{Interval: cfg.SweepInterval},
	)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Run(ctx)
	}()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Logger:   log,
		Calendar: store,
		Ledger:   ledger,
		Users:    users,
		Audit:    dispatcher,
		Clock:    clock,
		DB:       db,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	<-sweeperDone
	dispatcher.Close()
}
