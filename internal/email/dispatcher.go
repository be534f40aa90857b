package email

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"rentaloc/internal/domain"
)

// ErrEnqueueFailed is returned when a job cannot be accepted. Callers
// see failures only at enqueue time; delivery itself is asynchronous.
var ErrEnqueueFailed = errors.New("email enqueue failed")

// Mailer is the fire-and-forget delivery boundary services depend on.
// Enqueue methods return quickly; transport errors are logged by the
// worker, not surfaced to the caller.
type Mailer interface {
	EnqueueVerificationCode(toEmail, code string, expiresAt time.Time) error
	EnqueuePasswordResetCode(toEmail, code string, expiresAt time.Time) error
	EnqueueContactNotification(toEmail string, msg domain.ContactMessage) error
}

type job func(ctx context.Context) error

// Dispatcher implements Mailer with a single background worker and a
// bounded queue. Enqueue never blocks: a full queue or a closed
// dispatcher fails immediately so the caller can compensate.
type Dispatcher struct {
	logger *zap.Logger
	sender Sender
	jobs   chan job

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(logger *zap.Logger, sender Sender, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		logger: logger,
		sender: sender,
		jobs:   make(chan job, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := j(ctx); err != nil && d.logger != nil {
			d.logger.Warn("email delivery failed", zap.Error(err))
		}
		cancel()
	}
}

func (d *Dispatcher) enqueue(j job) error {
	if d.sender == nil {
		return ErrEnqueueFailed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrEnqueueFailed
	}
	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrEnqueueFailed
	}
}

func (d *Dispatcher) EnqueueVerificationCode(toEmail, code string, expiresAt time.Time) error {
	return d.enqueue(func(ctx context.Context) error {
		return d.sender.SendVerificationCode(ctx, toEmail, code, expiresAt)
	})
}

func (d *Dispatcher) EnqueuePasswordResetCode(toEmail, code string, expiresAt time.Time) error {
	return d.enqueue(func(ctx context.Context) error {
		return d.sender.SendPasswordResetCode(ctx, toEmail, code, expiresAt)
	})
}

func (d *Dispatcher) EnqueueContactNotification(toEmail string, msg domain.ContactMessage) error {
	return d.enqueue(func(ctx context.Context) error {
		return d.sender.SendContactNotification(ctx, toEmail, msg)
	})
}

// Close stops accepting jobs and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
