package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound         = errors.New("membership not found")
	ErrPlanNotFound     = errors.New("membership plan not found")
	ErrInvalidState     = errors.New("invalid membership state for this transition")
	ErrAlreadyCancelled = errors.New("membership already cancelled")
	ErrInvalidFreeze    = errors.New("freeze end date must be after freeze start date")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

const membershipColumns = `id, organization_id, member_id, plan_id, start_date, end_date, auto_renew, status,
	freeze_start_date, freeze_end_date, cancellation_date, cancellation_reason, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePlan(ctx context.Context, orgID int, name string, priceCents int64, currency string, durationDays int) (*Plan, error) {
	query := `
		INSERT INTO membership_plans (organization_id, name, price_cents, currency, duration_days)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, organization_id, name, price_cents, currency, duration_days, active, created_at
	`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, orgID, name, priceCents, currency, durationDays)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *repository) GetPlanByID(ctx context.Context, orgID, id int) (*Plan, error) {
	query := `
		SELECT id, organization_id, name, price_cents, currency, duration_days, active, created_at
		FROM membership_plans
		WHERE id = $1 AND organization_id = $2
	`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &plan, nil
}

func (r *repository) ListPlans(ctx context.Context, orgID int) ([]Plan, error) {
	query := `
		SELECT id, organization_id, name, price_cents, currency, duration_days, active, created_at
		FROM membership_plans
		WHERE organization_id = $1 AND active = true
		ORDER BY price_cents
	`

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query, orgID)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) Create(ctx context.Context, orgID, memberID, planID int, startDate, endDate time.Time, autoRenew bool) (*Membership, error) {
	query := fmt.Sprintf(`
		INSERT INTO memberships (organization_id, member_id, plan_id, start_date, end_date, auto_renew, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING %s
	`, membershipColumns)

	var m Membership
	err := r.db.GetContext(ctx, &m, query, orgID, memberID, planID, startDate, endDate, autoRenew)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetByID(ctx context.Context, orgID, id int) (*Membership, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE id = $1 AND organization_id = $2
	`, membershipColumns)

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) List(ctx context.Context, orgID int, status Status, memberID, limit, offset int) ([]Membership, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE organization_id = $1
		  AND ($2 = '' OR status = $2::text)
		  AND ($3 = 0 OR member_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, membershipColumns)

	var memberships []Membership
	err := r.db.SelectContext(ctx, &memberships, query, orgID, string(status), memberID, limit, offset)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (r *repository) Freeze(ctx context.Context, orgID, id int, freezeStart, freezeEnd time.Time, extendDays int) (*Membership, error) {
	// Status guard lives in the WHERE clause so a concurrent transition
	// cannot sneak in between a read and the write.
	query := fmt.Sprintf(`
		UPDATE memberships
		SET status = 'frozen',
		    freeze_start_date = $3,
		    freeze_end_date = $4,
		    end_date = end_date + $5 * INTERVAL '1 day',
		    updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND status = 'active'
		RETURNING %s
	`, membershipColumns)

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id, orgID, freezeStart, freezeEnd, extendDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.freezeConflict(ctx, orgID, id)
		}
		return nil, err
	}

	return &m, nil
}

// freezeConflict distinguishes a missing row from a wrong-state row after a
// guarded update matched nothing.
func (r *repository) freezeConflict(ctx context.Context, orgID, id int) error {
	var status string
	err := r.db.GetContext(ctx, &status, `SELECT status FROM memberships WHERE id = $1 AND organization_id = $2`, id, orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidState
}

func (r *repository) ForceFreeze(ctx context.Context, id int, freezeStart time.Time) (*Membership, error) {
	query := fmt.Sprintf(`
		UPDATE memberships
		SET status = 'frozen',
		    freeze_start_date = $2,
		    freeze_end_date = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('expired', 'cancelled')
		RETURNING %s
	`, membershipColumns)

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id, freezeStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) Cancel(ctx context.Context, orgID, id int, reason string, today time.Time) (*Membership, error) {
	query := fmt.Sprintf(`
		UPDATE memberships
		SET status = 'cancelled',
		    cancellation_date = $3,
		    cancellation_reason = $4,
		    auto_renew = false,
		    freeze_start_date = NULL,
		    freeze_end_date = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND status IN ('active', 'frozen')
		RETURNING %s
	`, membershipColumns)

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id, orgID, today, reason)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	existing, getErr := r.GetByID(ctx, orgID, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == StatusCancelled {
		return existing, ErrAlreadyCancelled
	}
	return nil, ErrInvalidState
}

func (r *repository) Renew(ctx context.Context, oldID int, startDate, endDate time.Time, autoRenew bool) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var old Membership
	err = tx.GetContext(ctx, &old, fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE id = $1
		FOR UPDATE
	`, membershipColumns), oldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var successor Membership
	err = tx.GetContext(ctx, &successor, fmt.Sprintf(`
		INSERT INTO memberships (organization_id, member_id, plan_id, start_date, end_date, auto_renew, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING %s
	`, membershipColumns), old.OrganizationID, old.MemberID, old.PlanID, startDate, endDate, autoRenew)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'expired', updated_at = NOW()
		WHERE id = $1
	`, oldID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &successor, nil
}

func (r *repository) UnfreezeDue(ctx context.Context, today time.Time) ([]Membership, error) {
	query := fmt.Sprintf(`
		UPDATE memberships
		SET status = 'active',
		    freeze_start_date = NULL,
		    freeze_end_date = NULL,
		    updated_at = NOW()
		WHERE status = 'frozen' AND freeze_end_date IS NOT NULL AND freeze_end_date <= $1
		RETURNING %s
	`, membershipColumns)

	var unfrozen []Membership
	err := r.db.SelectContext(ctx, &unfrozen, query, today)
	if err != nil {
		return nil, err
	}

	return unfrozen, nil
}

func (r *repository) ExpireDue(ctx context.Context, today time.Time) ([]Membership, error) {
	cutoff := today.AddDate(0, 0, -1)

	query := fmt.Sprintf(`
		UPDATE memberships
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND auto_renew = false AND end_date <= $1
		RETURNING %s
	`, membershipColumns)

	var expired []Membership
	err := r.db.SelectContext(ctx, &expired, query, cutoff)
	if err != nil {
		return nil, err
	}

	return expired, nil
}

func (r *repository) ListExpiring(ctx context.Context, today time.Time, horizonDays int) ([]Membership, error) {
	horizon := today.AddDate(0, 0, horizonDays)

	query := fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE status = 'active' AND end_date >= $1 AND end_date <= $2
		ORDER BY end_date, id
	`, membershipColumns)

	var expiring []Membership
	err := r.db.SelectContext(ctx, &expiring, query, today, horizon)
	if err != nil {
		return nil, err
	}

	return expiring, nil
}

func (r *repository) ListDueForRenewal(ctx context.Context, today time.Time) ([]Membership, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM memberships
		WHERE status = 'active' AND auto_renew = true AND end_date = $1
		ORDER BY id
	`, membershipColumns)

	var due []Membership
	err := r.db.SelectContext(ctx, &due, query, today)
	if err != nil {
		return nil, err
	}

	return due, nil
}
