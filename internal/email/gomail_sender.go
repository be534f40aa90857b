package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"rentaloc/internal/domain"
)

// GomailSender sends mail over SMTP via gomail.
type GomailSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewGomailSender(host string, port int, username, password, from, fromName string) (*GomailSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &GomailSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *GomailSender) SendVerificationCode(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	body := fmt.Sprintf(
		"<p>Your verification code is <strong>%s</strong>.</p><p>It expires at %s UTC.</p>",
		code,
		expiresAt.UTC().Format(time.RFC3339),
	)
	return s.send(toEmail, "Verify your account", body)
}

func (s *GomailSender) SendPasswordResetCode(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	body := fmt.Sprintf(
		"<p>Your password reset code is <strong>%s</strong>.</p><p>It expires at %s UTC.</p><p>If you did not request this change, you can ignore this email.</p>",
		code,
		expiresAt.UTC().Format(time.RFC3339),
	)
	return s.send(toEmail, "Password reset code", body)
}

func (s *GomailSender) SendContactNotification(_ context.Context, toEmail string, msg domain.ContactMessage) error {
	body := fmt.Sprintf(
		"<h3>New contact message: %s</h3><p>Name: %s<br>Email: %s<br>Phone: %s</p><p>%s</p>",
		msg.Subject,
		msg.Name,
		msg.Email,
		msg.Phone,
		msg.Message,
	)
	return s.send(toEmail, "New contact message: "+msg.Subject, body)
}

func (s *GomailSender) send(to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("to email is required")
	}
	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	return nil
}
