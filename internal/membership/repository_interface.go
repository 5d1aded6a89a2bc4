package membership

import (
	"context"
	"time"
)

type Repository interface {
	CreatePlan(ctx context.Context, orgID int, name string, priceCents int64, currency string, durationDays int) (*Plan, error)
	GetPlanByID(ctx context.Context, orgID, id int) (*Plan, error)
	ListPlans(ctx context.Context, orgID int) ([]Plan, error)

	Create(ctx context.Context, orgID, memberID, planID int, startDate, endDate time.Time, autoRenew bool) (*Membership, error)
	GetByID(ctx context.Context, orgID, id int) (*Membership, error)
	List(ctx context.Context, orgID int, status Status, memberID, limit, offset int) ([]Membership, error)

	// Freeze flips an active membership to frozen and extends its end date in
	// one guarded statement; returns ErrInvalidState when the row is not
	// active.
	Freeze(ctx context.Context, orgID, id int, freezeStart, freezeEnd time.Time, extendDays int) (*Membership, error)

	// ForceFreeze is the system-initiated protective freeze. It bypasses the
	// active-only guard but still refuses terminal rows.
	ForceFreeze(ctx context.Context, id int, freezeStart time.Time) (*Membership, error)

	// Cancel transitions any non-terminal membership to cancelled; returns
	// ErrAlreadyCancelled when the row is already cancelled so callers can
	// treat the rerun as a no-op.
	Cancel(ctx context.Context, orgID, id int, reason string, today time.Time) (*Membership, error)

	// Renew inserts the successor row and expires the old one inside a single
	// transaction holding a lock on the old row.
	Renew(ctx context.Context, oldID int, startDate, endDate time.Time, autoRenew bool) (*Membership, error)

	// UnfreezeDue reactivates every frozen membership whose freeze window has
	// elapsed, returning the rows it changed. Safe to rerun.
	UnfreezeDue(ctx context.Context, today time.Time) ([]Membership, error)

	// ExpireDue expires active, non-renewing memberships that ended before
	// today, returning the rows it changed. Safe to rerun.
	ExpireDue(ctx context.Context, today time.Time) ([]Membership, error)

	// ListExpiring returns active memberships ending within
	// [today, today+horizonDays].
	ListExpiring(ctx context.Context, today time.Time, horizonDays int) ([]Membership, error)

	// ListDueForRenewal returns active auto-renew memberships whose term ends
	// today; the payment orchestrator charges these.
	ListDueForRenewal(ctx context.Context, today time.Time) ([]Membership, error)
}
