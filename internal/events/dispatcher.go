package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher decouples event producers from handlers. Publish never
// blocks the caller on handler work; delivery happens on a background
// goroutine so a slow or failing notification cannot fail the request
// that triggered it.
type Dispatcher interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler EventHandler)
	Close()
}

type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	done      chan struct{}
	closed    bool
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with a buffered delivery queue
// and starts its delivery goroutine.
func NewDispatcher(logger *zap.Logger) Dispatcher {
	d := &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, 256),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go d.run()
	return d
}

// Publish enqueues the event. When the queue is full the event is
// dropped with a log line rather than blocking the request path.
func (d *asyncDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("type", string(event.Type)), zap.String("id", event.ID))
	}
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops the dispatcher after draining queued events.
func (d *asyncDispatcher) Close() {
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

func (d *asyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.mu.RLock()
		handlers := append([]EventHandler{}, d.listeners[event.Type]...)
		d.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(context.Background(), event); err != nil {
				d.logger.Error("event handler failed",
					zap.String("type", string(event.Type)),
					zap.String("id", event.ID),
					zap.Error(err))
			}
		}
	}
}
