package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentaloc/internal/domain"
)

// ReviewRepository is the persistence contract for tenant reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	GetByID(ctx context.Context, id string) (domain.Review, error)
	ListAll(ctx context.Context, limit int) ([]domain.Review, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Review, error)
	Update(ctx context.Context, id, message string) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

// PgReviewRepository implements ReviewRepository on pgxpool.
type PgReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewRepository(pool *pgxpool.Pool) *PgReviewRepository {
	return &PgReviewRepository{pool: pool}
}

const reviewColumns = `
	r.id, r.property_id, r.tenant_id, COALESCE(u.name, ''), r.message, r.posted_at, r.deleted_at`

func (r *PgReviewRepository) Create(ctx context.Context, review domain.Review) error {
	const query = `
		INSERT INTO reviews (id, property_id, tenant_id, message, posted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.PropertyID,
		review.TenantID,
		review.Message,
		review.PostedAt,
	)
	return err
}

func (r *PgReviewRepository) GetByID(ctx context.Context, id string) (domain.Review, error) {
	const query = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		LEFT JOIN users u ON u.id = r.tenant_id
		WHERE r.id = $1 AND r.deleted_at IS NULL
	`
	return scanReview(r.pool.QueryRow(ctx, query, id))
}

// ListAll returns reviews newest first. A limit of zero means no limit.
func (r *PgReviewRepository) ListAll(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		LEFT JOIN users u ON u.id = r.tenant_id
		WHERE r.deleted_at IS NULL
		ORDER BY r.posted_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *PgReviewRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Review, error) {
	const query = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		LEFT JOIN users u ON u.id = r.tenant_id
		WHERE r.tenant_id = $1 AND r.deleted_at IS NULL
		ORDER BY r.posted_at DESC
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *PgReviewRepository) Update(ctx context.Context, id, message string) error {
	const query = `UPDATE reviews SET message = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgReviewRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	const query = `UPDATE reviews SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, deletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.PropertyID,
		&rv.TenantID,
		&rv.TenantName,
		&rv.Message,
		&rv.PostedAt,
		&rv.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Review{}, err
	}
	return rv, err
}

func collectReviews(rows pgx.Rows) ([]domain.Review, error) {
	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
