package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/email"
	"rentaloc/internal/repository"
)

var ErrInvalidContact = errors.New("invalid contact message")

// ContactService stores contact-form submissions and notifies the
// configured admin address.
type ContactService struct {
	logger       *zap.Logger
	contacts     repository.ContactRepository
	mailer       email.Mailer
	contactEmail string

	now func() time.Time
}

func NewContactService(logger *zap.Logger, contacts repository.ContactRepository, mailer email.Mailer, contactEmail string) *ContactService {
	return &ContactService{
		logger:       logger,
		contacts:     contacts,
		mailer:       mailer,
		contactEmail: contactEmail,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// Submit persists the message, then queues the admin notification.
// Unlike a pending signup, a stored contact message is still useful if
// the notification cannot be queued, so it is kept and the failure is
// only logged.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (domain.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	message := strings.TrimSpace(input.Message)
	if name == "" || emailAddr == "" || message == "" {
		return domain.ContactMessage{}, ErrInvalidContact
	}

	msg := domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     emailAddr,
		Phone:     strings.TrimSpace(input.Phone),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return domain.ContactMessage{}, err
	}

	if s.contactEmail != "" && s.mailer != nil {
		if err := s.mailer.EnqueueContactNotification(s.contactEmail, msg); err != nil {
			s.logger.Warn("contact notification enqueue failed", zap.Error(err), zap.String("id", msg.ID))
		}
	}

	s.logger.Info("contact message received", zap.String("id", msg.ID))
	return msg, nil
}
