package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/domain"
	"github.com/a-bjn/sudexpert-storefront/pkg/database"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

// SubmissionRepository implements repository.SubmissionRepository using PostgreSQL.
type SubmissionRepository struct {
	pool database.DBTX
}

// NewSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewSubmissionRepository(pool database.DBTX) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a new submission into the database.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	query := `
		INSERT INTO contact_submissions (id, token, name, email, phone, message, client_ip, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Token,
		s.Name,
		s.Email,
		s.Phone,
		s.Message,
		s.ClientIP,
		s.Status,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

// UpdateStatus sets the status of an existing submission.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE contact_submissions SET status = $1 WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("submission", id)
	}

	return nil
}

// CountByIPSince returns how many submissions the given client IP has made
// since the given instant.
func (r *SubmissionRepository) CountByIPSince(ctx context.Context, clientIP string, since time.Time) (int, error) {
	query := `SELECT count(*) FROM contact_submissions WHERE client_ip = $1 AND created_at >= $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, clientIP, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count submissions by ip: %w", err)
	}

	return count, nil
}
