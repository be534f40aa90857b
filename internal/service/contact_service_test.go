package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"rentaloc/internal/domain"
)

type mockContactRepo struct {
	stored []domain.ContactMessage
	err    error
}

func (m *mockContactRepo) Create(_ context.Context, msg domain.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, msg)
	return nil
}

func newTestContactService(contacts *mockContactRepo, mailer *mockMailer) *ContactService {
	svc := NewContactService(zap.NewNop(), contacts, mailer, "admin@rentaloc.example")
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestContactSubmit(t *testing.T) {
	contacts := &mockContactRepo{}
	mailer := &mockMailer{}
	svc := newTestContactService(contacts, mailer)

	msg, err := svc.Submit(context.Background(), ContactInput{
		Name:    " Ana ",
		Email:   " Ana@Example.com ",
		Phone:   "555-0101",
		Subject: "Question",
		Message: "  Is the flat still listed?  ",
	})
	if err != nil {
		t.Fatalf("expected submit success, got %v", err)
	}
	if msg.Name != "Ana" || msg.Email != "ana@example.com" || msg.Message != "Is the flat still listed?" {
		t.Fatalf("expected trimmed normalized message, got %+v", msg)
	}
	if len(contacts.stored) != 1 {
		t.Fatalf("expected message persisted")
	}
	if mailer.contactTo != "admin@rentaloc.example" {
		t.Fatalf("expected notification queued to admin, got %q", mailer.contactTo)
	}
	if mailer.contactMsg.ID != msg.ID {
		t.Fatalf("expected stored message forwarded in notification")
	}
}

func TestContactSubmitRejectsMissingFields(t *testing.T) {
	svc := newTestContactService(&mockContactRepo{}, &mockMailer{})

	cases := []ContactInput{
		{Email: "a@example.com", Message: "hi"},
		{Name: "Ana", Message: "hi"},
		{Name: "Ana", Email: "a@example.com", Message: "   "},
	}
	for i, input := range cases {
		if _, err := svc.Submit(context.Background(), input); !errors.Is(err, ErrInvalidContact) {
			t.Fatalf("case %d: expected ErrInvalidContact, got %v", i, err)
		}
	}
}

func TestContactSubmitKeepsMessageOnEnqueueFailure(t *testing.T) {
	contacts := &mockContactRepo{}
	mailer := &mockMailer{err: errors.New("queue full")}
	svc := newTestContactService(contacts, mailer)

	msg, err := svc.Submit(context.Background(), ContactInput{
		Name: "Ana", Email: "a@example.com", Message: "hi",
	})
	if err != nil {
		t.Fatalf("expected submit to succeed despite enqueue failure, got %v", err)
	}
	if len(contacts.stored) != 1 || contacts.stored[0].ID != msg.ID {
		t.Fatalf("expected message kept")
	}
}

func TestContactSubmitStoreFailure(t *testing.T) {
	contacts := &mockContactRepo{err: errors.New("db down")}
	svc := newTestContactService(contacts, &mockMailer{})

	if _, err := svc.Submit(context.Background(), ContactInput{Name: "Ana", Email: "a@example.com", Message: "hi"}); err == nil {
		t.Fatalf("expected store failure surfaced")
	}
}
