package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrScheduleNotFound = errors.New("class schedule not found")
	ErrScheduleFinished = errors.New("schedule is completed or cancelled")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrInvalidStatus    = errors.New("invalid schedule status")
)

const scheduleColumns = `id, organization_id, class_id, instructor_id, scheduled_date, start_time, end_time, status, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateClass(ctx context.Context, orgID int, name, category string, capacity, durationMinutes, instructorID int) (*Class, error) {
	query := `
		INSERT INTO classes (organization_id, name, category, capacity, duration_minutes, instructor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, organization_id, name, category, capacity, duration_minutes, instructor_id, created_at
	`

	var cls Class
	err := r.db.GetContext(ctx, &cls, query, orgID, name, category, capacity, durationMinutes, instructorID)
	if err != nil {
		return nil, err
	}

	return &cls, nil
}

func (r *repository) GetClassByID(ctx context.Context, orgID, id int) (*Class, error) {
	query := `
		SELECT id, organization_id, name, category, capacity, duration_minutes, instructor_id, created_at
		FROM classes
		WHERE id = $1 AND organization_id = $2
	`

	var cls Class
	err := r.db.GetContext(ctx, &cls, query, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	return &cls, nil
}

func (r *repository) ListClasses(ctx context.Context, orgID int) ([]Class, error) {
	query := `
		SELECT id, organization_id, name, category, capacity, duration_minutes, instructor_id, created_at
		FROM classes
		WHERE organization_id = $1
		ORDER BY name
	`

	var classes []Class
	err := r.db.SelectContext(ctx, &classes, query, orgID)
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *repository) CreateSchedule(ctx context.Context, orgID, classID, instructorID int, scheduledDate time.Time, startTime, endTime string) (*Schedule, error) {
	query := `
		INSERT INTO class_schedules (organization_id, class_id, instructor_id, scheduled_date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'scheduled')
		RETURNING ` + scheduleColumns

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, orgID, classID, instructorID, scheduledDate, startTime, endTime)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetScheduleByID(ctx context.Context, orgID, id int) (*Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM class_schedules
		WHERE id = $1 AND organization_id = $2
	`

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) ListUpcoming(ctx context.Context, orgID int, from time.Time) ([]ScheduleWithAvailability, error) {
	query := `
		SELECT cs.id, cs.organization_id, cs.class_id, cs.instructor_id, cs.scheduled_date,
		       cs.start_time, cs.end_time, cs.status, cs.created_at,
		       c.name AS class_name, c.capacity,
		       COUNT(cb.id) FILTER (WHERE cb.status = 'booked') AS booked_count
		FROM class_schedules cs
		JOIN classes c ON c.id = cs.class_id
		LEFT JOIN class_bookings cb ON cb.schedule_id = cs.id
		WHERE cs.organization_id = $1 AND cs.status = 'scheduled' AND cs.scheduled_date >= $2
		GROUP BY cs.id, cs.organization_id, cs.class_id, cs.instructor_id, cs.scheduled_date,
		         cs.start_time, cs.end_time, cs.status, cs.created_at, c.name, c.capacity
		ORDER BY cs.scheduled_date, cs.start_time
	`

	var schedules []ScheduleWithAvailability
	err := r.db.SelectContext(ctx, &schedules, query, orgID, from)
	if err != nil {
		return nil, err
	}

	for i := range schedules {
		schedules[i].Available = schedules[i].Capacity - schedules[i].BookedCount
		if schedules[i].Available < 0 {
			schedules[i].Available = 0
		}
		schedules[i].IsFull = schedules[i].BookedCount >= schedules[i].Capacity
	}

	return schedules, nil
}

func (r *repository) UpdateScheduleStatus(ctx context.Context, orgID, id int, status ScheduleStatus) (*Schedule, error) {
	query := `
		UPDATE class_schedules
		SET status = $3
		WHERE id = $1 AND organization_id = $2 AND status NOT IN ('completed', 'cancelled')
		RETURNING ` + scheduleColumns

	var s Schedule
	err := r.db.GetContext(ctx, &s, query, id, orgID, string(status))
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, getErr := r.GetScheduleByID(ctx, orgID, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrScheduleFinished
}
