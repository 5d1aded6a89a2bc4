package membership

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusFrozen    Status = "frozen"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
// Expired memberships can still be renewed, but renewal creates a successor
// row rather than mutating the expired one.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusCancelled
}

type Plan struct {
	ID             int       `db:"id" json:"id"`
	OrganizationID int       `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	Currency       string    `db:"currency" json:"currency"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type Membership struct {
	ID                 int        `db:"id" json:"id"`
	OrganizationID     int        `db:"organization_id" json:"organization_id"`
	MemberID           int        `db:"member_id" json:"member_id"`
	PlanID             int        `db:"plan_id" json:"plan_id"`
	StartDate          time.Time  `db:"start_date" json:"start_date"`
	EndDate            time.Time  `db:"end_date" json:"end_date"`
	AutoRenew          bool       `db:"auto_renew" json:"auto_renew"`
	Status             Status     `db:"status" json:"status"`
	FreezeStartDate    *time.Time `db:"freeze_start_date" json:"freeze_start_date,omitempty"`
	FreezeEndDate      *time.Time `db:"freeze_end_date" json:"freeze_end_date,omitempty"`
	CancellationDate   *time.Time `db:"cancellation_date" json:"cancellation_date,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	MemberID  int    `json:"member_id" binding:"required"`
	PlanID    int    `json:"plan_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required" example:"2024-01-01"`
	AutoRenew bool   `json:"auto_renew"`
}

type FreezeRequest struct {
	FreezeStartDate string `json:"freeze_start_date" binding:"required" example:"2024-01-01"`
	FreezeEndDate   string `json:"freeze_end_date" binding:"required" example:"2024-01-05"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	PriceCents   int64  `json:"price_cents" binding:"required,gte=0"`
	Currency     string `json:"currency" binding:"required,len=3"`
	DurationDays int    `json:"duration_days" binding:"required,gte=1"`
}
