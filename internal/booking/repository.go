package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrScheduleNotFound    = errors.New("class schedule not found")
	ErrScheduleNotBookable = errors.New("class schedule is not open for booking")
	ErrPastClass           = errors.New("class has already started")
	ErrDuplicateBooking    = errors.New("member already has a live booking for this class")
	ErrInvalidState        = errors.New("invalid booking state for this transition")
)

const bookingColumns = `id, organization_id, schedule_id, member_id, status, booked_at, cancelled_at, attended_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// scheduleForBooking is the locked snapshot the admission decision reads.
type scheduleForBooking struct {
	Capacity int    `db:"capacity"`
	Status   string `db:"status"`
	Started  bool   `db:"started"`
}

func (r *repository) Book(ctx context.Context, orgID, scheduleID, memberID int, now time.Time) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The schedule row lock serialises concurrent admissions so the booked
	// count cannot go stale between the check and the insert.
	var sched scheduleForBooking
	err = tx.GetContext(ctx, &sched, `
		SELECT c.capacity, cs.status,
		       (cs.scheduled_date + cs.start_time) <= $3 AS started
		FROM class_schedules cs
		JOIN classes c ON c.id = cs.class_id
		WHERE cs.id = $1 AND cs.organization_id = $2
		FOR UPDATE OF cs
	`, scheduleID, orgID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if sched.Status != "scheduled" {
		return nil, ErrScheduleNotBookable
	}
	if sched.Started {
		return nil, ErrPastClass
	}

	var duplicate bool
	err = tx.GetContext(ctx, &duplicate, `
		SELECT EXISTS(
			SELECT 1 FROM class_bookings
			WHERE schedule_id = $1 AND member_id = $2 AND status IN ('booked', 'waitlisted')
		)
	`, scheduleID, memberID)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateBooking
	}

	var bookedCount int
	err = tx.GetContext(ctx, &bookedCount, `
		SELECT COUNT(*) FROM class_bookings
		WHERE schedule_id = $1 AND status = 'booked'
	`, scheduleID)
	if err != nil {
		return nil, err
	}

	status := StatusBooked
	if bookedCount >= sched.Capacity {
		status = StatusWaitlisted
	}

	var booking Booking
	err = tx.GetContext(ctx, &booking, `
		INSERT INTO class_bookings (organization_id, schedule_id, member_id, status, booked_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookingColumns, orgID, scheduleID, memberID, string(status), now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *repository) Cancel(ctx context.Context, orgID, bookingID int, now time.Time) (*Booking, *Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var current Booking
	err = tx.GetContext(ctx, &current, `
		SELECT `+bookingColumns+`
		FROM class_bookings
		WHERE id = $1 AND organization_id = $2
		FOR UPDATE
	`, bookingID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !current.Status.Live() {
		return nil, nil, ErrInvalidState
	}

	// Lock the schedule so a concurrent Book cannot interleave with the
	// promotion decision.
	var scheduleID int
	err = tx.GetContext(ctx, &scheduleID, `
		SELECT id FROM class_schedules WHERE id = $1 FOR UPDATE
	`, current.ScheduleID)
	if err != nil {
		return nil, nil, err
	}

	var cancelled Booking
	err = tx.GetContext(ctx, &cancelled, `
		UPDATE class_bookings
		SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1
		RETURNING `+bookingColumns, bookingID, now)
	if err != nil {
		return nil, nil, err
	}

	var promoted *Booking
	if current.Status == StatusBooked {
		var p Booking
		err = tx.GetContext(ctx, &p, `
			UPDATE class_bookings
			SET status = 'booked'
			WHERE id = (
				SELECT id FROM class_bookings
				WHERE schedule_id = $1 AND status = 'waitlisted'
				ORDER BY booked_at, id
				LIMIT 1
			)
			RETURNING `+bookingColumns, scheduleID)
		if err == nil {
			promoted = &p
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &cancelled, promoted, nil
}

func (r *repository) MarkAttendance(ctx context.Context, orgID, bookingID int, outcome Status, now time.Time) (*Booking, error) {
	var attendedAt *time.Time
	if outcome == StatusAttended {
		attendedAt = &now
	}

	var booking Booking
	err := r.db.GetContext(ctx, &booking, `
		UPDATE class_bookings
		SET status = $3, attended_at = $4
		WHERE id = $1 AND organization_id = $2 AND status = 'booked'
		RETURNING `+bookingColumns, bookingID, orgID, string(outcome), attendedAt)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, getErr := r.GetByID(ctx, orgID, bookingID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInvalidState
}

func (r *repository) GetByID(ctx context.Context, orgID, id int) (*Booking, error) {
	var booking Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT `+bookingColumns+`
		FROM class_bookings
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *repository) ListForMember(ctx context.Context, orgID, memberID int) ([]BookingWithDetails, error) {
	query := `
		SELECT cb.id, cb.organization_id, cb.schedule_id, cb.member_id, cb.status,
		       cb.booked_at, cb.cancelled_at, cb.attended_at,
		       c.name AS class_name, cs.scheduled_date, cs.start_time,
		       u.name AS member_name
		FROM class_bookings cb
		JOIN class_schedules cs ON cs.id = cb.schedule_id
		JOIN classes c ON c.id = cs.class_id
		JOIN users u ON u.id = cb.member_id
		WHERE cb.organization_id = $1 AND cb.member_id = $2
		ORDER BY cs.scheduled_date DESC, cs.start_time DESC
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, orgID, memberID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListForSchedule(ctx context.Context, orgID, scheduleID int) ([]BookingWithDetails, error) {
	query := `
		SELECT cb.id, cb.organization_id, cb.schedule_id, cb.member_id, cb.status,
		       cb.booked_at, cb.cancelled_at, cb.attended_at,
		       c.name AS class_name, cs.scheduled_date, cs.start_time,
		       u.name AS member_name
		FROM class_bookings cb
		JOIN class_schedules cs ON cs.id = cb.schedule_id
		JOIN classes c ON c.id = cs.class_id
		JOIN users u ON u.id = cb.member_id
		WHERE cb.organization_id = $1 AND cb.schedule_id = $2
		ORDER BY cb.booked_at, cb.id
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, orgID, scheduleID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListReminderWindow(ctx context.Context, from, to time.Time) ([]ReminderRow, error) {
	query := `
		SELECT cb.id AS booking_id, cb.member_id, c.name AS class_name,
		       cs.scheduled_date, cs.start_time
		FROM class_bookings cb
		JOIN class_schedules cs ON cs.id = cb.schedule_id
		JOIN classes c ON c.id = cs.class_id
		WHERE cb.status = 'booked' AND cs.status = 'scheduled'
		  AND (cs.scheduled_date + cs.start_time) > $1
		  AND (cs.scheduled_date + cs.start_time) <= $2
		ORDER BY cs.scheduled_date, cs.start_time, cb.id
	`

	var rows []ReminderRow
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
