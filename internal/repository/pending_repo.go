package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentaloc/internal/domain"
)

// PendingRepository is the persistence contract for pending signups.
// The unique index on email is the race-safety mechanism: concurrent
// creates for the same address resolve to one row and one ErrDuplicate.
type PendingRepository interface {
	Create(ctx context.Context, p domain.PendingSignup) error
	GetByEmail(ctx context.Context, email string) (domain.PendingSignup, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Reissue replaces the code, expiry and intent of an existing record
	// and advances updated_at.
	Reissue(ctx context.Context, id, code string, expiresAt, updatedAt time.Time, intent domain.Intent) error
	// Delete is idempotent; deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
}

// PgPendingRepository implements PendingRepository on pgxpool.
type PgPendingRepository struct {
	pool *pgxpool.Pool
}

func NewPgPendingRepository(pool *pgxpool.Pool) *PgPendingRepository {
	return &PgPendingRepository{pool: pool}
}

func (r *PgPendingRepository) Create(ctx context.Context, p domain.PendingSignup) error {
	const query = `
		INSERT INTO pending_signups (id, email, name, phone, password_hash, code, intent, expires_at, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Email,
		p.Name,
		p.Phone,
		p.PasswordHash,
		p.Code,
		p.Intent,
		p.ExpiresAt,
		p.UpdatedAt,
		p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgPendingRepository) GetByEmail(ctx context.Context, email string) (domain.PendingSignup, error) {
	const query = `
		SELECT id, email, name, phone, password_hash, code, intent, expires_at, updated_at, created_at
		FROM pending_signups
		WHERE email = $1
	`
	var p domain.PendingSignup
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.Phone,
		&p.PasswordHash,
		&p.Code,
		&p.Intent,
		&p.ExpiresAt,
		&p.UpdatedAt,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PendingSignup{}, err
	}
	return p, err
}

func (r *PgPendingRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM pending_signups WHERE name = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (r *PgPendingRepository) Reissue(ctx context.Context, id, code string, expiresAt, updatedAt time.Time, intent domain.Intent) error {
	const query = `
		UPDATE pending_signups
		SET code = $2, expires_at = $3, updated_at = $4, intent = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, code, expiresAt, updatedAt, intent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPendingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM pending_signups WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
