package payment

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

type Payment struct {
	ID             int        `db:"id" json:"id"`
	OrganizationID int        `db:"organization_id" json:"organization_id"`
	MembershipID   int        `db:"membership_id" json:"membership_id"`
	AmountCents    int64      `db:"amount_cents" json:"amount_cents"`
	Currency       string     `db:"currency" json:"currency"`
	Status         Status     `db:"status" json:"status"`
	DueDate        time.Time  `db:"due_date" json:"due_date"`
	RetryCount     int        `db:"retry_count" json:"retry_count"`
	NextRetryAt    *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
	TransactionRef *string    `db:"transaction_ref" json:"transaction_ref,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type RefundRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}
