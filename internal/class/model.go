package class

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusOngoing   ScheduleStatus = "ongoing"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusOngoing, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

type Class struct {
	ID              int       `db:"id" json:"id"`
	OrganizationID  int       `db:"organization_id" json:"organization_id"`
	Name            string    `db:"name" json:"name"`
	Category        string    `db:"category" json:"category"`
	Capacity        int       `db:"capacity" json:"capacity"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	InstructorID    int       `db:"instructor_id" json:"instructor_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Schedule times are stored as Postgres TIME columns and surface as
// "HH:MM:SS" strings.
type Schedule struct {
	ID             int            `db:"id" json:"id"`
	OrganizationID int            `db:"organization_id" json:"organization_id"`
	ClassID        int            `db:"class_id" json:"class_id"`
	InstructorID   int            `db:"instructor_id" json:"instructor_id"`
	ScheduledDate  time.Time      `db:"scheduled_date" json:"scheduled_date"`
	StartTime      string         `db:"start_time" json:"start_time"`
	EndTime        string         `db:"end_time" json:"end_time"`
	Status         ScheduleStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

type ScheduleWithAvailability struct {
	Schedule
	ClassName   string `db:"class_name" json:"class_name"`
	Capacity    int    `db:"capacity" json:"capacity"`
	BookedCount int    `db:"booked_count" json:"booked_count"`
	Available   int    `db:"-" json:"available"`
	IsFull      bool   `db:"-" json:"is_full"`
}

type CreateClassRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Category        string `json:"category" binding:"required,max=50"`
	Capacity        int    `json:"capacity" binding:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=5"`
	InstructorID    int    `json:"instructor_id" binding:"required"`
}

type CreateScheduleRequest struct {
	ClassID       int    `json:"class_id" binding:"required"`
	InstructorID  int    `json:"instructor_id"`
	ScheduledDate string `json:"scheduled_date" binding:"required" example:"2024-01-15"`
	StartTime     string `json:"start_time" binding:"required" example:"18:00"`
	EndTime       string `json:"end_time" binding:"required" example:"19:00"`
}

type UpdateScheduleStatusRequest struct {
	Status ScheduleStatus `json:"status" binding:"required"`
}
