package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentaloc/internal/domain"
)

// PropertyRepository is the persistence contract for listings and their
// attachments. All reads exclude soft-deleted rows.
type PropertyRepository interface {
	Create(ctx context.Context, p domain.Property) error
	GetByID(ctx context.Context, id string) (domain.Property, error)
	List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error)
	Update(ctx context.Context, p domain.Property) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error

	AddPhoto(ctx context.Context, photo domain.Photo) error
	AddVideo(ctx context.Context, video domain.Video) error
	ListPhotos(ctx context.Context, propertyID string) ([]domain.Photo, error)
	ListVideos(ctx context.Context, propertyID string) ([]domain.Video, error)
	SoftDeletePhoto(ctx context.Context, id string, deletedAt time.Time) error
	SoftDeleteVideo(ctx context.Context, id string, deletedAt time.Time) error
}

// CategoryRepository resolves listing categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByName(ctx context.Context, name string) (domain.Category, error)
}

// PgPropertyRepository implements PropertyRepository on pgxpool.
type PgPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPgPropertyRepository(pool *pgxpool.Pool) *PgPropertyRepository {
	return &PgPropertyRepository{pool: pool}
}

const propertyColumns = `
	p.id, p.owner_id, p.category_id, COALESCE(c.name, ''), p.location,
	p.price_per_month, p.description, p.contact_phone, p.available,
	p.created_at, p.updated_at, p.deleted_at`

func (r *PgPropertyRepository) Create(ctx context.Context, p domain.Property) error {
	const query = `
		INSERT INTO properties (id, owner_id, category_id, location, price_per_month, description, contact_phone, available, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.CategoryID,
		p.Location,
		p.PricePerMonth,
		p.Description,
		p.ContactPhone,
		p.Available,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PgPropertyRepository) GetByID(ctx context.Context, id string) (domain.Property, error) {
	const query = `
		SELECT ` + propertyColumns + `
		FROM properties p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`
	return scanProperty(r.pool.QueryRow(ctx, query, id))
}

// List applies the public listing filters: location substring, category
// name and the fixed price bands.
func (r *PgPropertyRepository) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.deleted_at IS NULL AND p.available = TRUE
	`
	args := []any{}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += ` AND p.location ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND LOWER(c.name) = LOWER($` + strconv.Itoa(len(args)) + `)`
	}
	switch filter.PriceBand {
	case domain.PriceBandUnder100k:
		query += ` AND p.price_per_month < 100000`
	case domain.PriceBand100k200k:
		query += ` AND p.price_per_month BETWEEN 100000 AND 200000`
	case domain.PriceBand200k500k:
		query += ` AND p.price_per_month BETWEEN 200000 AND 500000`
	case domain.PriceBandOver500k:
		query += ` AND p.price_per_month > 500000`
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *PgPropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	const query = `
		SELECT ` + propertyColumns + `
		FROM properties p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.owner_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *PgPropertyRepository) Update(ctx context.Context, p domain.Property) error {
	const query = `
		UPDATE properties
		SET category_id = NULLIF($2, ''), location = $3, price_per_month = $4,
		    description = $5, contact_phone = $6, available = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.CategoryID,
		p.Location,
		p.PricePerMonth,
		p.Description,
		p.ContactPhone,
		p.Available,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPropertyRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE properties SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, deletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPropertyRepository) AddPhoto(ctx context.Context, photo domain.Photo) error {
	const query = `
		INSERT INTO property_photos (id, property_id, path, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, photo.ID, photo.PropertyID, photo.Path, photo.CreatedAt)
	return err
}

func (r *PgPropertyRepository) AddVideo(ctx context.Context, video domain.Video) error {
	const query = `
		INSERT INTO property_videos (id, property_id, path, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, video.ID, video.PropertyID, video.Path, video.CreatedAt)
	return err
}

func (r *PgPropertyRepository) ListPhotos(ctx context.Context, propertyID string) ([]domain.Photo, error) {
	const query = `
		SELECT id, property_id, path, created_at, deleted_at
		FROM property_photos
		WHERE property_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.PropertyID, &p.Path, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PgPropertyRepository) ListVideos(ctx context.Context, propertyID string) ([]domain.Video, error) {
	const query = `
		SELECT id, property_id, path, created_at, deleted_at
		FROM property_videos
		WHERE property_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.PropertyID, &v.Path, &v.CreatedAt, &v.DeletedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *PgPropertyRepository) SoftDeletePhoto(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE property_photos SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.pool.Exec(ctx, query, id, deletedAt)
	return err
}

func (r *PgPropertyRepository) SoftDeleteVideo(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE property_videos SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.pool.Exec(ctx, query, id, deletedAt)
	return err
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.CategoryID,
		&p.CategoryName,
		&p.Location,
		&p.PricePerMonth,
		&p.Description,
		&p.ContactPhone,
		&p.Available,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Property{}, err
	}
	return p, err
}

func collectProperties(rows pgx.Rows) ([]domain.Property, error) {
	var props []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// PgCategoryRepository implements CategoryRepository on pgxpool.
type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *PgCategoryRepository) GetByName(ctx context.Context, name string) (domain.Category, error) {
	const query = `SELECT id, name FROM categories WHERE LOWER(name) = LOWER($1)`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name)
	return c, err
}
