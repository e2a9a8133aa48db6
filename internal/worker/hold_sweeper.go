package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

// Expirer is satisfied by booking.ExpireStaleHolds.
type Expirer interface {
	Execute(ctx context.Context) ([]domain.Reservation, error)
}

type SweeperConfig struct {
	Interval time.Duration
}

// HoldSweeper periodically expires unconfirmed holds.
type HoldSweeper struct {
	expirer  Expirer
	logger   *zap.Logger
	interval time.Duration
}

func NewHoldSweeper(expirer Expirer, logger *zap.Logger, cfg SweeperConfig) *HoldSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoldSweeper{
		expirer:  expirer,
		logger:   logger,
		interval: cfg.Interval,
	}
}

// Run blocks until ctx is cancelled.
func (w *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("hold sweeper started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *HoldSweeper) Sweep(ctx context.Context) int {
	expired, err := w.expirer.Execute(ctx)
	if err != nil {
		w.logger.Error("hold sweep failed", zap.Error(err))
		return 0
	}

	if len(expired) > 0 {
		w.logger.Info("expired stale holds", zap.Int("count", len(expired)))
	}
	return len(expired)
}
