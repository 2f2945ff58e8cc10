package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/domain"
	"github.com/a-bjn/sudexpert-storefront/pkg/database"
	apperrors "github.com/a-bjn/sudexpert-storefront/pkg/errors"
)

func sampleSubmission() *domain.Submission {
	return &domain.Submission{
		ID:        "0c6a3c2e-9f2a-4a9e-8f63-1c7a7d1f0a01",
		Token:     "sudexpert-contact",
		Name:      "Ion Popescu",
		Email:     "ion@example.ro",
		Phone:     "0722000000",
		Message:   "Am nevoie de o oferta.",
		ClientIP:  "203.0.113.9",
		Status:    domain.SubmissionStatusPending,
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubmissionRepository_Create(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepository(mock)
	s := sampleSubmission()

	mock.ExpectExec("INSERT INTO contact_submissions").
		WithArgs(s.ID, s.Token, s.Name, s.Email, s.Phone, s.Message, s.ClientIP, s.Status, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_CreateError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepository(mock)
	s := sampleSubmission()

	mock.ExpectExec("INSERT INTO contact_submissions").
		WithArgs(s.ID, s.Token, s.Name, s.Email, s.Phone, s.Message, s.ClientIP, s.Status, s.CreatedAt).
		WillReturnError(errors.New("connection refused"))

	err = repo.Create(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert submission")
}

func TestSubmissionRepository_UpdateStatus(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE contact_submissions").
		WithArgs(domain.SubmissionStatusSent, "sub-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "sub-1", domain.SubmissionStatusSent))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_UpdateStatusNotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepository(mock)

	mock.ExpectExec("UPDATE contact_submissions").
		WithArgs(domain.SubmissionStatusSent, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "missing", domain.SubmissionStatusSent)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmissionRepository_CountByIPSince(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSubmissionRepository(mock)
	since := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count").
		WithArgs("203.0.113.9", since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByIPSince(context.Background(), "203.0.113.9", since)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
