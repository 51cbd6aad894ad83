package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"naco/internal/utils"
)

var (
	ErrQueueFull       = errors.New("event queue full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

type AsyncConfig struct {
	Buffer  int
	Timeout time.Duration
}

type asyncEvent struct {
	requestID string
	key       string
	payload   any
}

// Async hands events to a background worker so callers never wait on the
// broker. A full queue drops the event.
type Async struct {
	next    Publisher
	timeout time.Duration
	queue   chan asyncEvent
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Publisher, cfg AsyncConfig) *Async {
	if next == nil {
		next = Nop{}
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	a := &Async{
		next:    next,
		timeout: cfg.Timeout,
		queue:   make(chan asyncEvent, cfg.Buffer),
		done:    make(chan struct{}),
	}
	go a.work()
	return a
}

// PublishJSON queues the event and returns at once.
func (a *Async) PublishJSON(ctx context.Context, key string, v any) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrPublisherClosed
	}
	select {
	case a.queue <- asyncEvent{requestID: utils.RequestIDFrom(ctx), key: key, payload: v}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) work() {
	defer close(a.done)
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), ev.requestID), a.timeout)
		if err := a.next.PublishJSON(ctx, ev.key, ev.payload); err != nil {
			utils.LogCtx(ctx, "events", "publish", fmt.Sprintf("key=%s err=%v", ev.key, err))
		}
		cancel()
	}
}

// Shutdown stops intake, waits for queued events until ctx ends, then closes
// the underlying publisher.
func (a *Async) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	first := !a.closed
	if first {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	var err error
	select {
	case <-a.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if first {
		if cerr := a.next.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Close is Shutdown bounded by the publish timeout.
func (a *Async) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	return a.Shutdown(ctx)
}
