package email

import (
	"context"
	"errors"
	"time"

	"rentaloc/internal/domain"
)

// Sender is the mail transport boundary.
type Sender interface {
	SendVerificationCode(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendPasswordResetCode(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendContactNotification(ctx context.Context, toEmail string, msg domain.ContactMessage) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender returns a Sender that fails every send with reason.
// Used when SMTP is not configured.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) fail() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

func (s *disabledSender) SendVerificationCode(context.Context, string, string, time.Time) error {
	return s.fail()
}

func (s *disabledSender) SendPasswordResetCode(context.Context, string, string, time.Time) error {
	return s.fail()
}

func (s *disabledSender) SendContactNotification(context.Context, string, domain.ContactMessage) error {
	return s.fail()
}
