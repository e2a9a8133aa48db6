package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/reservation"
)

type fakeExpirer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExpirer) Execute(context.Context) ([]domain.Reservation, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Reservation{{ID: "a"}, {ID: "b"}}, nil
}

func TestHoldSweeper_Sweep(t *testing.T) {
	w := NewHoldSweeper(&fakeExpirer{}, nil, SweeperConfig{})
	if n := w.Sweep(context.Background()); n != 2 {
		t.Fatalf("expected 2 expired, got %d", n)
	}
	if w.interval != time.Minute {
		t.Fatalf("expected default interval, got %s", w.interval)
	}

	failing := NewHoldSweeper(&fakeExpirer{err: errors.New("db down")}, nil, SweeperConfig{})
	if n := failing.Sweep(context.Background()); n != 0 {
		t.Fatalf("expected 0 on failure, got %d", n)
	}
}

func TestHoldSweeper_RunStopsOnCancel(t *testing.T) {
	exp := &fakeExpirer{}
	w := NewHoldSweeper(exp, nil, SweeperConfig{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for exp.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not tick")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
}
