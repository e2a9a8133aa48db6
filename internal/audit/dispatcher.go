package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	ActionReservationHeld      = "reservation_held"
	ActionReservationConfirmed = "reservation_confirmed"
	ActionReservationCancelled = "reservation_cancelled"
	ActionReservationExpired   = "reservation_expired"
	ActionCalendarUpdated      = "calendar_updated"
	ActionHolidaysReplaced     = "holidays_replaced"
	ActionAdminLogin           = "admin_login"

	EntityReservation = "reservation"
	EntityCalendar    = "calendar"
	EntityHoliday     = "holiday"
	EntityUser        = "user"
)

type Event struct {
	ProviderID string
	UserID     *uint
	Action     string
	Entity     string
	EntityID   string
	Metadata   any
}

const queueSize = 100

// Dispatcher writes events from a buffered queue on a single worker. Dispatch
// never blocks the caller; a full queue drops the event. A nil sink only logs.
type Dispatcher struct {
	sink  Sink
	log   *zap.Logger
	queue chan Event

	// mu guards closed against sends racing Close.
	mu     sync.RWMutex
	closed bool

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		d.log.Debug("audit",
			zap.String("action", ev.Action),
			zap.String("entity", ev.Entity),
			zap.String("entity_id", ev.EntityID),
			zap.String("provider_id", ev.ProviderID),
		)

		if d.sink == nil {
			continue
		}
		if err := d.sink.Write(context.Background(), ev); err != nil {
			d.log.Warn("audit write failed", zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

// Dispatch is safe on a nil Dispatcher and after Close; late events are dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("audit dispatcher closed, dropping event", zap.String("action", ev.Action))
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue and waits for the worker.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	<-d.done
}
