package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentaloc/internal/domain"
)

// ContactRepository stores contact-form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg domain.ContactMessage) error
}

// PgContactRepository implements ContactRepository on pgxpool.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

func (r *PgContactRepository) Create(ctx context.Context, msg domain.ContactMessage) error {
	const query = `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Phone,
		msg.Subject,
		msg.Message,
		msg.CreatedAt,
	)
	return err
}
