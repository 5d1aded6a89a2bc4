package membership

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

func membershipCols() []string {
	return []string{
		"id", "organization_id", "member_id", "plan_id", "start_date", "end_date",
		"auto_renew", "status", "freeze_start_date", "freeze_end_date",
		"cancellation_date", "cancellation_reason", "created_at", "updated_at",
	}
}

func membershipRow(id int, status Status, start, end time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(membershipCols()).
		AddRow(id, 1, 9, 2, start, end, false, string(status), nil, nil, nil, nil, now, now)
}

func TestRepoFreeze(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	freezeStart := date("2024-01-01")
	freezeEnd := date("2024-01-05")

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'frozen'")).
		WithArgs(1, 1, freezeStart, freezeEnd, 4).
		WillReturnRows(membershipRow(1, StatusFrozen, date("2023-12-01"), date("2024-01-14")))

	m, err := repo.Freeze(context.Background(), 1, 1, freezeStart, freezeEnd, 4)
	require.NoError(t, err)
	require.Equal(t, StatusFrozen, m.Status)
	require.Equal(t, date("2024-01-14"), m.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoFreezeWrongState(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'frozen'")).
		WithArgs(1, 1, date("2024-01-01"), date("2024-01-05"), 4).
		WillReturnRows(sqlmock.NewRows(membershipCols()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM memberships WHERE id = $1 AND organization_id = $2")).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))

	_, err := repo.Freeze(context.Background(), 1, 1, date("2024-01-01"), date("2024-01-05"), 4)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRepoFreezeNotFound(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'frozen'")).
		WithArgs(42, 1, date("2024-01-01"), date("2024-01-05"), 4).
		WillReturnRows(sqlmock.NewRows(membershipCols()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM memberships")).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.Freeze(context.Background(), 1, 42, date("2024-01-01"), date("2024-01-05"), 4)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepoCancelAlreadyCancelled(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	today := date("2024-02-01")

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'cancelled'")).
		WithArgs(3, 1, today, "again").
		WillReturnRows(sqlmock.NewRows(membershipCols()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs(3, 1).
		WillReturnRows(membershipRow(3, StatusCancelled, date("2024-01-01"), date("2024-01-31")))

	m, err := repo.Cancel(context.Background(), 1, 3, "again", today)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	require.NotNil(t, m)
	require.Equal(t, StatusCancelled, m.Status)
}

func TestRepoRenewTransaction(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	start := date("2024-01-11")
	end := date("2024-02-10")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(membershipRow(5, StatusActive, date("2023-12-12"), date("2024-01-10")))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO memberships")).
		WithArgs(1, 9, 2, start, end, true).
		WillReturnRows(membershipRow(6, StatusActive, start, end))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE memberships SET status = 'expired'")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m, err := repo.Renew(context.Background(), 5, start, end, true)
	require.NoError(t, err)
	require.Equal(t, 6, m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoRenewMissingRowRollsBack(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(membershipCols()))
	mock.ExpectRollback()

	_, err := repo.Renew(context.Background(), 99, date("2024-01-11"), date("2024-02-10"), false)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUnfreezeDue(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	today := date("2024-01-06")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'active'")).
		WithArgs(today).
		WillReturnRows(membershipRow(1, StatusActive, date("2023-12-01"), date("2024-02-01")))

	unfrozen, err := repo.UnfreezeDue(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, unfrozen, 1)
}

func TestRepoExpireDueCutoff(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	// Membership ending Jan 10 is still usable on Jan 10; the cutoff passed
	// to the query is yesterday.
	today := date("2024-01-11")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE memberships SET status = 'expired'")).
		WithArgs(date("2024-01-10")).
		WillReturnRows(membershipRow(1, StatusExpired, date("2023-12-11"), date("2024-01-10")))

	expired, err := repo.ExpireDue(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoListDueForRenewal(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	today := date("2024-01-10")
	mock.ExpectQuery(regexp.QuoteMeta("auto_renew = true AND end_date = $1")).
		WithArgs(today).
		WillReturnRows(membershipRow(5, StatusActive, date("2023-12-12"), today))

	due, err := repo.ListDueForRenewal(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, 5, due[0].ID)
}
