package booking

import (
	"context"
	"time"
)

type Repository interface {
	// Book admits the member as booked while spots remain, otherwise
	// waitlists them. The capacity check and the insert run in one
	// transaction holding the schedule row lock.
	Book(ctx context.Context, orgID, scheduleID, memberID int, now time.Time) (*Booking, error)

	// Cancel transitions a live booking to cancelled. When the cancelled
	// booking held a spot, the earliest waitlisted booking of the same
	// schedule is promoted to booked inside the same transaction. The
	// promoted booking is nil when the waitlist was empty.
	Cancel(ctx context.Context, orgID, bookingID int, now time.Time) (cancelled, promoted *Booking, err error)

	// MarkAttendance moves a booked booking to attended or no_show.
	MarkAttendance(ctx context.Context, orgID, bookingID int, outcome Status, now time.Time) (*Booking, error)

	GetByID(ctx context.Context, orgID, id int) (*Booking, error)
	ListForMember(ctx context.Context, orgID, memberID int) ([]BookingWithDetails, error)
	ListForSchedule(ctx context.Context, orgID, scheduleID int) ([]BookingWithDetails, error)

	// ListReminderWindow returns booked members of scheduled sessions
	// starting in (from, to], across all organizations.
	ListReminderWindow(ctx context.Context, from, to time.Time) ([]ReminderRow, error)
}
