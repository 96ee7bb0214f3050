// Package dispatch serialises inbound events per session key. Each key has
// at most one worker goroutine, which drains that key's queue in arrival
// order; different keys proceed concurrently.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/metrics"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

const defaultEventTimeout = 15 * time.Second

var ErrClosed = errors.New("dispatcher closed")

type Handler interface {
	Handle(ctx context.Context, ev chatdto.Event) []chatdto.Action
}

// Outbound delivers replies to the chat transport.
type Outbound interface {
	Deliver(ctx context.Context, a chatdto.Action) error
}

type Dispatcher struct {
	handler Handler
	out     Outbound
	timeout time.Duration
	logger  *zap.Logger

	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queues map[string][]chatdto.Event
	closed bool
	wg     sync.WaitGroup
}

func New(handler Handler, out Outbound, eventTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if eventTimeout <= 0 {
		eventTimeout = defaultEventTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		handler: handler,
		out:     out,
		timeout: eventTimeout,
		logger:  logger,
		base:    base,
		cancel:  cancel,
		queues:  make(map[string][]chatdto.Event),
	}
}

// Submit enqueues ev behind earlier events with the same session key.
func (d *Dispatcher) Submit(ev chatdto.Event) error {
	key := ev.SessionKey()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.EventsDroppedTotal.Inc()
		return ErrClosed
	}
	q, running := d.queues[key]
	d.queues[key] = append(q, ev)
	if !running {
		d.wg.Add(1)
	}
	d.mu.Unlock()

	if !running {
		go d.drain(key)
	}
	return nil
}

func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		ev := q[0]
		q[0] = chatdto.Event{}
		d.queues[key] = q[1:]
		d.mu.Unlock()

		d.process(ev)
	}
}

func (d *Dispatcher) process(ev chatdto.Event) {
	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event_handler_panic",
				zap.String("chat", ev.Chat),
				zap.String("sender", ev.Sender),
				zap.String("kind", ev.Kind.String()),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
		}
	}()

	for _, a := range d.handler.Handle(ctx, ev) {
		if d.out == nil {
			continue
		}
		if err := d.out.Deliver(ctx, a); err != nil {
			metrics.DeliveryErrorsTotal.Inc()
			d.logger.Warn("reply_delivery_failed",
				zap.String("chat", a.Chat),
				zap.String("action", a.Kind.String()),
				zap.Error(err),
			)
		}
	}
}

// Close stops accepting events and waits for queued ones to finish.
// In-flight handlers are cancelled if ctx expires first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	defer d.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
