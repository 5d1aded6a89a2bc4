package booking

import "time"

type Status string

const (
	StatusBooked     Status = "booked"
	StatusWaitlisted Status = "waitlisted"
	StatusAttended   Status = "attended"
	StatusNoShow     Status = "no_show"
	StatusCancelled  Status = "cancelled"
)

// Live reports whether the booking still occupies or queues for a spot.
func (s Status) Live() bool {
	return s == StatusBooked || s == StatusWaitlisted
}

type Booking struct {
	ID             int        `db:"id" json:"id"`
	OrganizationID int        `db:"organization_id" json:"organization_id"`
	ScheduleID     int        `db:"schedule_id" json:"schedule_id"`
	MemberID       int        `db:"member_id" json:"member_id"`
	Status         Status     `db:"status" json:"status"`
	BookedAt       time.Time  `db:"booked_at" json:"booked_at"`
	CancelledAt    *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	AttendedAt     *time.Time `db:"attended_at" json:"attended_at,omitempty"`
}

type BookingWithDetails struct {
	Booking
	ClassName     string    `db:"class_name" json:"class_name"`
	ScheduledDate time.Time `db:"scheduled_date" json:"scheduled_date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	MemberName    string    `db:"member_name" json:"member_name"`
}

// ReminderRow is one booked member of a session starting inside the
// reminder window.
type ReminderRow struct {
	BookingID     int       `db:"booking_id"`
	MemberID      int       `db:"member_id"`
	ClassName     string    `db:"class_name"`
	ScheduledDate time.Time `db:"scheduled_date"`
	StartTime     string    `db:"start_time"`
}

type BookRequest struct {
	ScheduleID int `json:"schedule_id" binding:"required"`
}

type AttendanceRequest struct {
	Outcome Status `json:"outcome" binding:"required,oneof=attended no_show"`
}
