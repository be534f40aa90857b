package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"rentaloc/internal/domain"
)

type recordingSender struct {
	mu      sync.Mutex
	verify  []string
	reset   []string
	contact []string
	err     error
}

func (s *recordingSender) SendVerificationCode(_ context.Context, toEmail, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.verify = append(s.verify, toEmail+":"+code)
	return nil
}

func (s *recordingSender) SendPasswordResetCode(_ context.Context, toEmail, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reset = append(s.reset, toEmail+":"+code)
	return nil
}

func (s *recordingSender) SendContactNotification(_ context.Context, toEmail string, _ domain.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.contact = append(s.contact, toEmail)
	return nil
}

func (s *recordingSender) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.verify), len(s.reset), len(s.contact)
}

func TestDispatcherDeliversQueuedJobs(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(zap.NewNop(), sender, 8)

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := d.EnqueueVerificationCode("a@example.com", "1234", expires); err != nil {
		t.Fatalf("enqueue verification failed: %v", err)
	}
	if err := d.EnqueuePasswordResetCode("b@example.com", "5678", expires); err != nil {
		t.Fatalf("enqueue reset failed: %v", err)
	}
	if err := d.EnqueueContactNotification("admin@example.com", domain.ContactMessage{ID: "m1"}); err != nil {
		t.Fatalf("enqueue contact failed: %v", err)
	}

	d.Close()

	v, r, c := sender.counts()
	if v != 1 || r != 1 || c != 1 {
		t.Fatalf("expected all jobs delivered, got verify=%d reset=%d contact=%d", v, r, c)
	}
	if sender.verify[0] != "a@example.com:1234" {
		t.Fatalf("unexpected verification delivery: %q", sender.verify[0])
	}
}

func TestDispatcherEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(zap.NewNop(), &recordingSender{}, 1)
	d.Close()

	err := d.EnqueueVerificationCode("a@example.com", "1234", time.Now().UTC())
	if !errors.Is(err, ErrEnqueueFailed) {
		t.Fatalf("expected ErrEnqueueFailed after close, got %v", err)
	}
}

func TestDispatcherNilSender(t *testing.T) {
	d := &Dispatcher{jobs: make(chan job, 1)}

	err := d.EnqueueVerificationCode("a@example.com", "1234", time.Now().UTC())
	if !errors.Is(err, ErrEnqueueFailed) {
		t.Fatalf("expected ErrEnqueueFailed with no sender, got %v", err)
	}
}

func TestDispatcherDeliveryFailureIsContained(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(zap.NewNop(), sender, 4)

	// Transport failure is the worker's problem; enqueue still succeeds.
	if err := d.EnqueueVerificationCode("a@example.com", "1234", time.Now().UTC()); err != nil {
		t.Fatalf("expected enqueue success, got %v", err)
	}
	d.Close()
}

func TestDisabledSenderAlwaysFails(t *testing.T) {
	s := NewDisabledSender("not configured")

	if err := s.SendVerificationCode(context.Background(), "a@example.com", "1234", time.Now()); err == nil {
		t.Fatalf("expected disabled sender to fail")
	}
	if err := s.SendContactNotification(context.Background(), "a@example.com", domain.ContactMessage{}); err == nil {
		t.Fatalf("expected disabled sender to fail")
	}
}
