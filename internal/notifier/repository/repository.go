package repository

import (
	"context"
	"time"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/domain"
)

// SubmissionRepository defines the interface for contact submission persistence.
type SubmissionRepository interface {
	// Create inserts a new submission into the store.
	Create(ctx context.Context, submission *domain.Submission) error

	// UpdateStatus sets the status of an existing submission.
	UpdateStatus(ctx context.Context, id, status string) error

	// CountByIPSince returns how many submissions the given client IP has
	// made since the given instant.
	CountByIPSince(ctx context.Context, clientIP string, since time.Time) (int, error)
}
