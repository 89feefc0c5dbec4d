package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const queueSize = 100

// Dispatcher sends notifications in the background. Delivery failures
// are logged and never reach the booking flow.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	queue  chan Notification
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		sender: sender,
		log:    log,
		queue:  make(chan Notification, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.sender.Send(ctx, n); err != nil {
			d.log.Warn("notification failed",
				zap.String("event", string(n.Event)),
				zap.String("booking_id", n.BookingID),
				zap.String("user_id", n.UserID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Notify queues n. It never blocks; a full queue drops the notification.
func (d *Dispatcher) Notify(_ context.Context, n Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- n:
	default:
		d.log.Warn("notification queue full, dropping",
			zap.String("event", string(n.Event)),
			zap.String("booking_id", n.BookingID),
		)
	}
}

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
