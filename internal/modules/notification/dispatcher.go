package notification

import (
	"context"
	"sync"
	"time"

	"modpaypal/internal/domain"
)

const deliverTimeout = 10 * time.Second

type messageStore interface {
	Create(ctx context.Context, m *domain.Message) error
}

type eventSink interface {
	SendToUser(userID int64, event Event) bool
}

// Dispatcher delivers messages on a background worker. Notify never blocks:
// when the queue is full the message is dropped and logged. Nothing is retried.
type Dispatcher struct {
	store   messageStore
	sink    eventSink
	loggerf func(format string, args ...interface{})

	queue  chan domain.Message
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(store messageStore, sink eventSink, queueSize int, loggerf func(format string, args ...interface{})) *Dispatcher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		store:   store,
		sink:    sink,
		loggerf: loggerf,
		queue:   make(chan domain.Message, queueSize),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for m := range d.queue {
			d.deliver(m)
		}
	}()
}

func (d *Dispatcher) Notify(m domain.Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.loggerf("level=warn msg=notification dropped after close name=%s user_to=%d", m.Name, m.UserTo)
		return
	}

	select {
	case d.queue <- m:
	default:
		d.loggerf("level=warn msg=notification queue full, dropped name=%s user_to=%d subject=%q", m.Name, m.UserTo, m.Subject)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
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

func (d *Dispatcher) deliver(m domain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := d.store.Create(ctx, &m); err != nil {
		d.loggerf("level=error msg=failed to store notification name=%s user_to=%d err=%v", m.Name, m.UserTo, err)
		return
	}
	if d.sink != nil {
		d.sink.SendToUser(m.UserTo, Event{Type: EventMessage, Subject: m.Subject, Message: m.FullMessage})
	}
}
