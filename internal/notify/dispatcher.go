package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher queues messages and delivers them on a background worker,
// decoupling workflow transitions from notification latency. Delivery is
// fire-and-forget: failures are logged and dropped, never retried and
// never surfaced to the enqueuer.
type Dispatcher struct {
	notifier    Notifier
	queue       chan Message
	sendTimeout time.Duration
	logger      *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue capacity
func NewDispatcher(notifier Notifier, queueSize int, sendTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		notifier:    notifier,
		queue:       make(chan Message, queueSize),
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Start launches the delivery worker
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.isRunning = true

	go d.run(ctx)
	d.logger.Info("Notification dispatcher started", zap.Int("queue_size", cap(d.queue)))
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

// drain delivers whatever is still queued at shutdown
func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.notifier.Send(ctx, msg); err != nil {
		d.logger.Error("Notification delivery failed",
			zap.String("event", msg.Event),
			zap.Strings("to", msg.To),
			zap.Error(err))
	}
}

// Enqueue schedules a message for delivery. When the queue is full the
// message is dropped and logged.
func (d *Dispatcher) Enqueue(msg Message) {
	if len(msg.To) == 0 {
		d.logger.Warn("Dropping notification with no recipients",
			zap.String("event", msg.Event))
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("Notification queue full, dropping message",
			zap.String("event", msg.Event),
			zap.Strings("to", msg.To))
	}
}

// Stop cancels the worker and waits for queued messages to drain
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = false
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	cancel()
	<-done
	d.logger.Info("Notification dispatcher stopped")
}
