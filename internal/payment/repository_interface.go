package payment

import (
	"context"
	"time"
)

type Repository interface {
	// GetOrCreatePending returns the existing pending payment for the
	// membership and due date, creating it when absent. Reruns of the
	// renewal job converge on the same row.
	GetOrCreatePending(ctx context.Context, orgID, membershipID int, amountCents int64, currency string, dueDate time.Time) (*Payment, error)

	GetByID(ctx context.Context, orgID, id int) (*Payment, error)
	List(ctx context.Context, orgID int, status Status, limit, offset int) ([]Payment, error)

	// MarkProcessing claims a pending payment for a charge attempt. The
	// status guard makes concurrent or repeated attempts lose cleanly with
	// ErrNotPending.
	MarkProcessing(ctx context.Context, id int) (*Payment, error)

	MarkCompleted(ctx context.Context, id int, transactionRef string) (*Payment, error)
	MarkFailed(ctx context.Context, id int) (*Payment, error)

	// ScheduleRetry returns a processing payment to pending with an
	// incremented retry count and the next attempt time.
	ScheduleRetry(ctx context.Context, id int, nextRetryAt time.Time) (*Payment, error)

	// MarkRefunded transitions a completed payment to refunded.
	MarkRefunded(ctx context.Context, orgID, id int) (*Payment, error)

	// ListRetryDue returns pending payments whose next_retry_at has passed,
	// across all organizations.
	ListRetryDue(ctx context.Context, now time.Time) ([]Payment, error)

	// ListDueSoon returns pending first-attempt payments due inside
	// [from, to], for reminder notices.
	ListDueSoon(ctx context.Context, from, to time.Time) ([]Payment, error)
}
