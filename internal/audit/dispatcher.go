package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const queueSize = 100

type Event struct {
	ShopID   *string
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Metadata any
}

// Dispatcher writes audit events off the request path. A full queue
// drops the event; audit never fails a request.
type Dispatcher struct {
	writer Writer
	log    *zap.Logger
	queue  chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(writer Writer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		writer: writer,
		log:    log,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.writer.Write(ctx, ev); err != nil {
			d.log.Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.String("entity_id", ev.EntityID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}
