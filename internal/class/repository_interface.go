package class

import (
	"context"
	"time"
)

type Repository interface {
	CreateClass(ctx context.Context, orgID int, name, category string, capacity, durationMinutes, instructorID int) (*Class, error)
	GetClassByID(ctx context.Context, orgID, id int) (*Class, error)
	ListClasses(ctx context.Context, orgID int) ([]Class, error)

	CreateSchedule(ctx context.Context, orgID, classID, instructorID int, scheduledDate time.Time, startTime, endTime string) (*Schedule, error)
	GetScheduleByID(ctx context.Context, orgID, id int) (*Schedule, error)

	// ListUpcoming returns scheduled sessions from today onward together
	// with their live booked counts.
	ListUpcoming(ctx context.Context, orgID int, from time.Time) ([]ScheduleWithAvailability, error)

	// UpdateScheduleStatus refuses transitions out of completed or
	// cancelled schedules.
	UpdateScheduleStatus(ctx context.Context, orgID, id int, status ScheduleStatus) (*Schedule, error)
}
