package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
)

type mockPropertyRepo struct {
	byID   map[string]domain.Property
	photos map[string][]domain.Photo
	videos map[string][]domain.Video
}

func newMockPropertyRepo() *mockPropertyRepo {
	return &mockPropertyRepo{
		byID:   make(map[string]domain.Property),
		photos: make(map[string][]domain.Photo),
		videos: make(map[string][]domain.Video),
	}
}

func (m *mockPropertyRepo) Create(_ context.Context, p domain.Property) error {
	m.byID[p.ID] = p
	return nil
}

func (m *mockPropertyRepo) GetByID(_ context.Context, id string) (domain.Property, error) {
	p, ok := m.byID[id]
	if !ok || p.DeletedAt != nil {
		return domain.Property{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPropertyRepo) List(_ context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range m.byID {
		if p.DeletedAt != nil || !p.Available {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(filter.Location)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPropertyRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range m.byID {
		if p.DeletedAt == nil && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPropertyRepo) Update(_ context.Context, p domain.Property) error {
	existing, ok := m.byID[p.ID]
	if !ok || existing.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	m.byID[p.ID] = p
	return nil
}

func (m *mockPropertyRepo) SoftDelete(_ context.Context, id string, deletedAt time.Time) error {
	p, ok := m.byID[id]
	if !ok || p.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	p.DeletedAt = &deletedAt
	m.byID[id] = p
	return nil
}

func (m *mockPropertyRepo) AddPhoto(_ context.Context, photo domain.Photo) error {
	m.photos[photo.PropertyID] = append(m.photos[photo.PropertyID], photo)
	return nil
}

func (m *mockPropertyRepo) AddVideo(_ context.Context, video domain.Video) error {
	m.videos[video.PropertyID] = append(m.videos[video.PropertyID], video)
	return nil
}

func (m *mockPropertyRepo) ListPhotos(_ context.Context, propertyID string) ([]domain.Photo, error) {
	return m.photos[propertyID], nil
}

func (m *mockPropertyRepo) ListVideos(_ context.Context, propertyID string) ([]domain.Video, error) {
	return m.videos[propertyID], nil
}

func (m *mockPropertyRepo) SoftDeletePhoto(_ context.Context, id string, _ time.Time) error {
	for pid, photos := range m.photos {
		for i, photo := range photos {
			if photo.ID == id {
				m.photos[pid] = append(photos[:i], photos[i+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (m *mockPropertyRepo) SoftDeleteVideo(_ context.Context, id string, _ time.Time) error {
	for pid, videos := range m.videos {
		for i, video := range videos {
			if video.ID == id {
				m.videos[pid] = append(videos[:i], videos[i+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

type mockCategoryRepo struct {
	byName map[string]domain.Category
}

func newMockCategoryRepo(names ...string) *mockCategoryRepo {
	m := &mockCategoryRepo{byName: make(map[string]domain.Category)}
	for i, name := range names {
		m.byName[strings.ToLower(name)] = domain.Category{ID: "c" + string(rune('1'+i)), Name: name}
	}
	return m
}

func (m *mockCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.byName {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) GetByName(_ context.Context, name string) (domain.Category, error) {
	c, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func ownerClaims(id string) Claims {
	return Claims{UserID: id, Email: id + "@example.com", Role: domain.RoleOwner, Approved: true}
}

func newTestPropertyService(props *mockPropertyRepo, cats *mockCategoryRepo) *PropertyService {
	svc := NewPropertyService(zap.NewNop(), props, cats)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPropertyCreate(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo("Apartment"))

	prop, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{
		Category:      "Apartment",
		Location:      " Centro ",
		PricePerMonth: 95000,
		Description:   "2 rooms",
		ContactPhone:  "555-0101",
		Available:     true,
	})
	if err != nil {
		t.Fatalf("expected create success, got %v", err)
	}
	if prop.OwnerID != "o1" || prop.Location != "Centro" {
		t.Fatalf("unexpected property: %+v", prop)
	}
	if prop.CategoryID == "" {
		t.Fatalf("expected category resolved")
	}
	if _, ok := props.byID[prop.ID]; !ok {
		t.Fatalf("expected property persisted")
	}
}

func TestPropertyCreateUnknownCategory(t *testing.T) {
	svc := newTestPropertyService(newMockPropertyRepo(), newMockCategoryRepo("Apartment"))

	_, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{
		Category: "Castle", Location: "x", PricePerMonth: 1, Description: "d",
	})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestPropertyCreateRequiresApprovedOwner(t *testing.T) {
	svc := newTestPropertyService(newMockPropertyRepo(), newMockCategoryRepo())

	cases := []Claims{
		{UserID: "t1", Role: domain.RoleTenant, Approved: true},
		{UserID: "o1", Role: domain.RoleOwner, Approved: false},
		{UserID: "a1", Role: domain.RoleAdmin, Approved: true},
	}
	for _, claims := range cases {
		_, err := svc.Create(context.Background(), claims, PropertyInput{Location: "x", PricePerMonth: 1, Description: "d"})
		if !errors.Is(err, ErrNotApprovedOwner) {
			t.Fatalf("expected ErrNotApprovedOwner for %s, got %v", claims.Role, err)
		}
	}
}

func TestPropertyUpdateByOtherOwner(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo())

	prop, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{Location: "x", PricePerMonth: 1, Description: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Update(context.Background(), ownerClaims("o2"), prop.ID, PropertyInput{Location: "y", PricePerMonth: 2, Description: "d"})
	if !errors.Is(err, ErrNotPropertyOwner) {
		t.Fatalf("expected ErrNotPropertyOwner, got %v", err)
	}
}

func TestPropertyDeleteHidesListing(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo())

	prop, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{Location: "x", PricePerMonth: 1, Description: "d", Available: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), ownerClaims("o1"), prop.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), prop.ID, true); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected deleted listing hidden, got %v", err)
	}
	listed, err := svc.List(context.Background(), domain.PropertyFilter{})
	if err != nil || len(listed) != 0 {
		t.Fatalf("expected deleted listing excluded from list, got %d,%v", len(listed), err)
	}
}

func TestPropertyGetStripsContactForAnonymous(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo())

	prop, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{
		Location: "x", PricePerMonth: 1, Description: "d", ContactPhone: "555-0101",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	anon, err := svc.Get(context.Background(), prop.ID, false)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if anon.ContactPhone != "" {
		t.Fatalf("expected contact phone hidden for anonymous callers")
	}

	authed, err := svc.Get(context.Background(), prop.ID, true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if authed.ContactPhone != "555-0101" {
		t.Fatalf("expected contact phone for authenticated callers, got %q", authed.ContactPhone)
	}
}

func TestPropertyAttachPhoto(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo())

	prop, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{Location: "x", PricePerMonth: 1, Description: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	photo, err := svc.AttachPhoto(context.Background(), ownerClaims("o1"), prop.ID, "Front Door.JPG")
	if err != nil {
		t.Fatalf("attach photo failed: %v", err)
	}
	if !strings.HasPrefix(photo.Path, "property_photos/"+prop.ID+"_") {
		t.Fatalf("unexpected storage path %q", photo.Path)
	}
	if !strings.HasSuffix(photo.Path, ".jpg") {
		t.Fatalf("expected lowercased extension, got %q", photo.Path)
	}
	if len(props.photos[prop.ID]) != 1 {
		t.Fatalf("expected photo recorded")
	}

	if _, err := svc.AttachPhoto(context.Background(), ownerClaims("o2"), prop.ID, "x.png"); !errors.Is(err, ErrNotPropertyOwner) {
		t.Fatalf("expected ErrNotPropertyOwner, got %v", err)
	}
}

func TestPropertyListByOwner(t *testing.T) {
	props := newMockPropertyRepo()
	svc := newTestPropertyService(props, newMockCategoryRepo())

	if _, err := svc.Create(context.Background(), ownerClaims("o1"), PropertyInput{Location: "a", PricePerMonth: 1, Description: "d"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), ownerClaims("o2"), PropertyInput{Location: "b", PricePerMonth: 1, Description: "d"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mine, err := svc.ListByOwner(context.Background(), ownerClaims("o1"))
	if err != nil {
		t.Fatalf("list by owner failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Location != "a" {
		t.Fatalf("expected only o1 listings, got %+v", mine)
	}
}
