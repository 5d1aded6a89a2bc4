package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrNotPending    = errors.New("payment is not pending")
	ErrNotRefundable = errors.New("payment is not refundable")
)

const paymentColumns = `id, organization_id, membership_id, amount_cents, currency, status, due_date,
	retry_count, next_retry_at, transaction_ref, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreatePending(ctx context.Context, orgID, membershipID int, amountCents int64, currency string, dueDate time.Time) (*Payment, error) {
	// Relies on the partial unique index on (membership_id, due_date) for
	// pending rows.
	insert := `
		INSERT INTO payments (organization_id, membership_id, amount_cents, currency, status, due_date)
		VALUES ($1, $2, $3, $4, 'pending', $5)
		ON CONFLICT (membership_id, due_date) WHERE status = 'pending' DO NOTHING
		RETURNING ` + paymentColumns

	var p Payment
	err := r.db.GetContext(ctx, &p, insert, orgID, membershipID, amountCents, currency, dueDate)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.GetContext(ctx, &p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE membership_id = $1 AND due_date = $2 AND status = 'pending'
	`, membershipID, dueDate)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, orgID, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context, orgID int, status Status, limit, offset int) ([]Payment, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE organization_id = $1
		  AND ($2 = '' OR status = $2::text)
		ORDER BY due_date DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, query, orgID, string(status), limit, offset)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *repository) MarkProcessing(ctx context.Context, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'processing', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+paymentColumns, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) MarkCompleted(ctx context.Context, id int, transactionRef string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'completed', transaction_ref = $2, next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns, id, transactionRef)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) MarkFailed(ctx context.Context, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'failed', next_retry_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns, id)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) ScheduleRetry(ctx context.Context, id int, nextRetryAt time.Time) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'pending', retry_count = retry_count + 1, next_retry_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentColumns, id, nextRetryAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) MarkRefunded(ctx context.Context, orgID, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		UPDATE payments
		SET status = 'refunded', updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND status = 'completed'
		RETURNING `+paymentColumns, id, orgID)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, getErr := r.GetByID(ctx, orgID, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrNotRefundable
}

func (r *repository) ListRetryDue(ctx context.Context, now time.Time) ([]Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND next_retry_at IS NOT NULL AND next_retry_at <= $1
		ORDER BY next_retry_at, id
	`

	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, query, now)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *repository) ListDueSoon(ctx context.Context, from, to time.Time) ([]Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND retry_count = 0 AND due_date >= $1 AND due_date <= $2
		ORDER BY due_date, id
	`

	var payments []Payment
	err := r.db.SelectContext(ctx, &payments, query, from, to)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
