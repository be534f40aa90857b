package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/repository"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrNotTenant      = errors.New("only tenants can manage reviews")
	ErrNotReviewOwner = errors.New("review belongs to another tenant")
	ErrEmptyReview    = errors.New("review message is empty")
)

// ReviewService manages tenant reviews of listings.
type ReviewService struct {
	logger  *zap.Logger
	reviews repository.ReviewRepository
	props   repository.PropertyRepository

	now func() time.Time
}

func NewReviewService(logger *zap.Logger, reviews repository.ReviewRepository, props repository.PropertyRepository) *ReviewService {
	return &ReviewService{
		logger:  logger,
		reviews: reviews,
		props:   props,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func requireTenant(claims Claims) error {
	switch claims.Role {
	case domain.RoleTenant:
		return nil
	case domain.RoleOwner, domain.RoleAdmin:
		return ErrNotTenant
	default:
		return ErrNotTenant
	}
}

func (s *ReviewService) Create(ctx context.Context, claims Claims, propertyID, message string) (domain.Review, error) {
	if err := requireTenant(claims); err != nil {
		return domain.Review{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Review{}, ErrEmptyReview
	}

	if _, err := s.props.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrPropertyNotFound
		}
		return domain.Review{}, err
	}

	review := domain.Review{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		TenantID:   claims.UserID,
		TenantName: claims.Name,
		Message:    message,
		PostedAt:   s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return domain.Review{}, err
	}
	s.logger.Info("review created", zap.String("id", review.ID), zap.String("property", propertyID))
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, claims Claims, id, message string) (domain.Review, error) {
	review, err := s.ownedReview(ctx, claims, id)
	if err != nil {
		return domain.Review{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Review{}, ErrEmptyReview
	}
	if err := s.reviews.Update(ctx, id, message); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrReviewNotFound
		}
		return domain.Review{}, err
	}
	review.Message = message
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, claims Claims, id string) error {
	if _, err := s.ownedReview(ctx, claims, id); err != nil {
		return err
	}
	if err := s.reviews.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}
	s.logger.Info("review deleted", zap.String("id", id))
	return nil
}

// ListPublic returns non-deleted reviews newest first. limit zero means
// all of them; the home page asks for the latest three.
func (s *ReviewService) ListPublic(ctx context.Context, limit int) ([]domain.Review, error) {
	return s.reviews.ListAll(ctx, limit)
}

func (s *ReviewService) ListMine(ctx context.Context, claims Claims) ([]domain.Review, error) {
	if err := requireTenant(claims); err != nil {
		return nil, err
	}
	return s.reviews.ListByTenant(ctx, claims.UserID)
}

func (s *ReviewService) ownedReview(ctx context.Context, claims Claims, id string) (domain.Review, error) {
	if err := requireTenant(claims); err != nil {
		return domain.Review{}, err
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrReviewNotFound
		}
		return domain.Review{}, err
	}
	if review.TenantID != claims.UserID {
		return domain.Review{}, ErrNotReviewOwner
	}
	return review, nil
}
