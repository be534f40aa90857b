package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/repository"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotApprovedOwner = errors.New("only approved owners can manage properties")
	ErrNotPropertyOwner = errors.New("property belongs to another owner")
	ErrUnknownCategory  = errors.New("unknown category")
)

// PropertyService manages rental listings and their attachments.
type PropertyService struct {
	logger *zap.Logger
	props  repository.PropertyRepository
	cats   repository.CategoryRepository

	now func() time.Time
}

func NewPropertyService(logger *zap.Logger, props repository.PropertyRepository, cats repository.CategoryRepository) *PropertyService {
	return &PropertyService{
		logger: logger,
		props:  props,
		cats:   cats,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type PropertyInput struct {
	Category      string
	Location      string
	PricePerMonth int64
	Description   string
	ContactPhone  string
	Available     bool
}

// requireApprovedOwner gates listing mutations. Tenants and admins do
// not manage listings; admins moderate through account controls.
func requireApprovedOwner(claims Claims) error {
	switch claims.Role {
	case domain.RoleOwner:
		if !claims.Approved {
			return ErrNotApprovedOwner
		}
		return nil
	case domain.RoleTenant, domain.RoleAdmin:
		return ErrNotApprovedOwner
	default:
		return ErrNotApprovedOwner
	}
}

func (s *PropertyService) Create(ctx context.Context, claims Claims, input PropertyInput) (domain.Property, error) {
	if err := requireApprovedOwner(claims); err != nil {
		return domain.Property{}, err
	}

	categoryID, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return domain.Property{}, err
	}

	now := s.now()
	prop := domain.Property{
		ID:            uuid.NewString(),
		OwnerID:       claims.UserID,
		CategoryID:    categoryID,
		CategoryName:  input.Category,
		Location:      strings.TrimSpace(input.Location),
		PricePerMonth: input.PricePerMonth,
		Description:   input.Description,
		ContactPhone:  strings.TrimSpace(input.ContactPhone),
		Available:     input.Available,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.props.Create(ctx, prop); err != nil {
		return domain.Property{}, err
	}
	s.logger.Info("property created", zap.String("id", prop.ID), zap.String("owner", prop.OwnerID))
	return prop, nil
}

func (s *PropertyService) Update(ctx context.Context, claims Claims, id string, input PropertyInput) (domain.Property, error) {
	prop, err := s.ownedProperty(ctx, claims, id)
	if err != nil {
		return domain.Property{}, err
	}

	categoryID, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return domain.Property{}, err
	}

	prop.CategoryID = categoryID
	prop.CategoryName = input.Category
	prop.Location = strings.TrimSpace(input.Location)
	prop.PricePerMonth = input.PricePerMonth
	prop.Description = input.Description
	prop.ContactPhone = strings.TrimSpace(input.ContactPhone)
	prop.Available = input.Available
	prop.UpdatedAt = s.now()

	if err := s.props.Update(ctx, prop); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, ErrPropertyNotFound
		}
		return domain.Property{}, err
	}
	return prop, nil
}

func (s *PropertyService) Delete(ctx context.Context, claims Claims, id string) error {
	if _, err := s.ownedProperty(ctx, claims, id); err != nil {
		return err
	}
	if err := s.props.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPropertyNotFound
		}
		return err
	}
	s.logger.Info("property deleted", zap.String("id", id))
	return nil
}

// List returns available, non-deleted listings matching the filter.
func (s *PropertyService) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	return s.props.List(ctx, filter)
}

func (s *PropertyService) ListByOwner(ctx context.Context, claims Claims) ([]domain.Property, error) {
	if err := requireApprovedOwner(claims); err != nil {
		return nil, err
	}
	return s.props.ListByOwner(ctx, claims.UserID)
}

// Get loads a listing with its attachments. The contact phone is
// stripped for anonymous callers.
func (s *PropertyService) Get(ctx context.Context, id string, authenticated bool) (domain.Property, error) {
	prop, err := s.props.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, ErrPropertyNotFound
		}
		return domain.Property{}, err
	}
	if prop.Photos, err = s.props.ListPhotos(ctx, id); err != nil {
		return domain.Property{}, err
	}
	if prop.Videos, err = s.props.ListVideos(ctx, id); err != nil {
		return domain.Property{}, err
	}
	if !authenticated {
		prop.ContactPhone = ""
	}
	return prop, nil
}

// AttachPhoto records a photo for an owned listing and returns the
// storage path the upload should be written to: a per-property name
// with a fresh uuid, keeping originals unguessable.
func (s *PropertyService) AttachPhoto(ctx context.Context, claims Claims, propertyID, filename string) (domain.Photo, error) {
	if _, err := s.ownedProperty(ctx, claims, propertyID); err != nil {
		return domain.Photo{}, err
	}
	photo := domain.Photo{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Path:       attachmentPath("property_photos", propertyID, filename),
		CreatedAt:  s.now(),
	}
	if err := s.props.AddPhoto(ctx, photo); err != nil {
		return domain.Photo{}, err
	}
	return photo, nil
}

// AttachVideo is the video counterpart of AttachPhoto.
func (s *PropertyService) AttachVideo(ctx context.Context, claims Claims, propertyID, filename string) (domain.Video, error) {
	if _, err := s.ownedProperty(ctx, claims, propertyID); err != nil {
		return domain.Video{}, err
	}
	video := domain.Video{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Path:       attachmentPath("property_videos", propertyID, filename),
		CreatedAt:  s.now(),
	}
	if err := s.props.AddVideo(ctx, video); err != nil {
		return domain.Video{}, err
	}
	return video, nil
}

func (s *PropertyService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.cats.List(ctx)
}

func (s *PropertyService) ownedProperty(ctx context.Context, claims Claims, id string) (domain.Property, error) {
	if err := requireApprovedOwner(claims); err != nil {
		return domain.Property{}, err
	}
	prop, err := s.props.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, ErrPropertyNotFound
		}
		return domain.Property{}, err
	}
	if prop.OwnerID != claims.UserID {
		return domain.Property{}, ErrNotPropertyOwner
	}
	return prop, nil
}

func (s *PropertyService) resolveCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	cat, err := s.cats.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownCategory
		}
		return "", err
	}
	return cat.ID, nil
}

func attachmentPath(dir, propertyID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(dir, fmt.Sprintf("%s_%s%s", propertyID, uuid.NewString(), ext))
}
