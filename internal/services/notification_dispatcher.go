package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"naco/internal/domain/models"
	"naco/internal/events"
	"naco/internal/metrics"
	"naco/internal/utils"

	"github.com/google/uuid"
)

var ErrDispatcherClosed = errors.New("notification dispatcher closed")

type DispatcherConfig struct {
	Buffer  int
	Workers int
	Timeout time.Duration
}

type queuedNotification struct {
	requestID string
	n         models.Notification
}

// Dispatcher persists notifications on background workers so that callers
// never wait on the notification store. A full queue drops the item.
type Dispatcher struct {
	store   NotificationStore
	events  events.Publisher
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time

	queue chan queuedNotification
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(store NotificationStore, pub events.Publisher, m *metrics.Metrics, cfg DispatcherConfig) *Dispatcher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if pub == nil {
		pub = events.Nop{}
	}
	d := &Dispatcher{
		store:   store,
		events:  pub,
		metrics: m,
		timeout: cfg.Timeout,
		now:     utils.NowUTC,
		queue:   make(chan queuedNotification, cfg.Buffer),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue implements NotificationSink.
func (d *Dispatcher) Enqueue(ctx context.Context, recipientID string, typ models.NotificationType, title, message string, data map[string]any) {
	if err := d.TryEnqueue(ctx, recipientID, typ, title, message, data); err != nil {
		utils.LogCtx(ctx, "notify", "enqueue", fmt.Sprintf("recipient=%s type=%s dropped: %v", recipientID, typ, err))
	}
}

// TryEnqueue is Enqueue that reports why an item was not queued.
func (d *Dispatcher) TryEnqueue(ctx context.Context, recipientID string, typ models.NotificationType, title, message string, data map[string]any) error {
	n := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Message:     message,
		Data:        data,
		CreatedAt:   d.now(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.Notification("dropped")
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- queuedNotification{requestID: utils.RequestIDFrom(ctx), n: n}:
		return nil
	default:
		d.metrics.Notification("dropped")
		return errors.New("notification queue full")
	}
}

// Len reports how many notifications wait to be persisted.
func (d *Dispatcher) Len() int { return len(d.queue) }

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for item := range d.queue {
		d.deliver(item)
	}
}

func (d *Dispatcher) deliver(item queuedNotification) {
	ctx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), item.requestID), d.timeout)
	defer cancel()

	if err := d.store.CreateNotification(ctx, item.n); err != nil {
		d.metrics.Notification("failed")
		utils.LogCtx(ctx, "notify", "persist", fmt.Sprintf("recipient=%s type=%s err=%v", item.n.RecipientID, item.n.Type, err))
		return
	}
	d.metrics.Notification("stored")
	if err := d.events.PublishJSON(ctx, "notification.created", item.n); err != nil {
		utils.LogCtx(ctx, "notify", "publish", fmt.Sprintf("notification_id=%s err=%v", item.n.ID, err))
	}
}

// Close stops intake and waits for queued notifications until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
