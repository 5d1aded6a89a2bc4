package payment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func paymentCols() []string {
	return []string{
		"id", "organization_id", "membership_id", "amount_cents", "currency", "status",
		"due_date", "retry_count", "next_retry_at", "transaction_ref", "created_at", "updated_at",
	}
}

func paymentRow(id int, status Status, retryCount int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(paymentCols()).
		AddRow(id, 1, 5, int64(4900), "USD", string(status), date("2024-01-10"), retryCount, nil, nil, now, now)
}

func TestGetOrCreatePendingInserts(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(1, 5, int64(4900), "USD", date("2024-01-10")).
		WillReturnRows(paymentRow(21, StatusPending, 0))

	p, err := repo.GetOrCreatePending(context.Background(), 1, 5, 4900, "USD", date("2024-01-10"))
	require.NoError(t, err)
	require.Equal(t, 21, p.ID)
	require.Equal(t, StatusPending, p.Status)
}

func TestGetOrCreatePendingReturnsExisting(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	// Conflict with the partial unique index returns no row; the follow-up
	// select finds the existing pending payment.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(1, 5, int64(4900), "USD", date("2024-01-10")).
		WillReturnRows(sqlmock.NewRows(paymentCols()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE membership_id = $1 AND due_date = $2 AND status = 'pending'")).
		WithArgs(5, date("2024-01-10")).
		WillReturnRows(paymentRow(21, StatusPending, 1))

	p, err := repo.GetOrCreatePending(context.Background(), 1, 5, 4900, "USD", date("2024-01-10"))
	require.NoError(t, err)
	require.Equal(t, 21, p.ID)
	require.Equal(t, 1, p.RetryCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessingGuard(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SET status = 'processing'")).
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows(paymentCols()))

	_, err := repo.MarkProcessing(context.Background(), 21)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestScheduleRetryIncrementsCount(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	nextRetry := time.Date(2024, 1, 11, 2, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("retry_count = retry_count + 1")).
		WithArgs(21, nextRetry).
		WillReturnRows(paymentRow(21, StatusPending, 1))

	p, err := repo.ScheduleRetry(context.Background(), 21, nextRetry)
	require.NoError(t, err)
	require.Equal(t, 1, p.RetryCount)
}

func TestMarkRefundedGuard(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SET status = 'refunded'")).
		WithArgs(21, 1).
		WillReturnRows(sqlmock.NewRows(paymentCols()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = $1")).
		WithArgs(21, 1).
		WillReturnRows(paymentRow(21, StatusFailed, 3))

	_, err := repo.MarkRefunded(context.Background(), 1, 21)
	require.ErrorIs(t, err, ErrNotRefundable)
}
