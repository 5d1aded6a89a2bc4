package booking

import (
	"context"
	"time"

	"github.com/akshith-07/fitflow-pro/internal/class"
	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
	"github.com/akshith-07/fitflow-pro/internal/notification"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

type Service interface {
	Book(ctx context.Context, orgID, memberID, scheduleID int) (*Booking, error)
	Cancel(ctx context.Context, orgID, bookingID int) (*Booking, error)
	MarkAttendance(ctx context.Context, orgID, bookingID int, outcome Status) (*Booking, error)
	Get(ctx context.Context, orgID, id int) (*Booking, error)
	ListForMember(ctx context.Context, orgID, memberID int) ([]BookingWithDetails, error)
	ListForSchedule(ctx context.Context, orgID, scheduleID int) ([]BookingWithDetails, error)

	// SendClassReminders notifies booked members of sessions starting
	// within the next hour. Scheduled hourly; safe to rerun.
	SendClassReminders(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	classRepo class.Repository
	userRepo  user.Repository
	notifier  *notification.Manager
	clock     clock.Clock
}

func NewService(repo Repository, classRepo class.Repository, userRepo user.Repository, notifier *notification.Manager, clk clock.Clock) Service {
	return &service{
		repo:      repo,
		classRepo: classRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		clock:     clk,
	}
}

func (s *service) Book(ctx context.Context, orgID, memberID, scheduleID int) (*Booking, error) {
	booking, err := s.repo.Book(ctx, orgID, scheduleID, memberID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(booking.Status))
	logger.Info("Booking created",
		"booking_id", booking.ID, "schedule_id", scheduleID, "member_id", memberID, "status", booking.Status)

	className, sessionDate := s.sessionDetails(ctx, orgID, scheduleID)
	waitlisted := booking.Status == StatusWaitlisted
	s.notifyMember(ctx, memberID, func(name string) (string, string) {
		if waitlisted {
			return notification.BookingWaitlisted(name, className, sessionDate)
		}
		return notification.BookingConfirmed(name, className, sessionDate)
	})

	return booking, nil
}

func (s *service) Cancel(ctx context.Context, orgID, bookingID int) (*Booking, error) {
	cancelled, promoted, err := s.repo.Cancel(ctx, orgID, bookingID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	logger.Info("Booking cancelled", "booking_id", cancelled.ID, "schedule_id", cancelled.ScheduleID)

	className, sessionDate := s.sessionDetails(ctx, orgID, cancelled.ScheduleID)
	s.notifyMember(ctx, cancelled.MemberID, func(name string) (string, string) {
		return notification.BookingCancelled(name, className, sessionDate)
	})

	if promoted != nil {
		metrics.RecordWaitlistPromotion()
		logger.Info("Waitlist promotion",
			"booking_id", promoted.ID, "schedule_id", promoted.ScheduleID, "member_id", promoted.MemberID)

		s.notifyMember(ctx, promoted.MemberID, func(name string) (string, string) {
			return notification.WaitlistPromoted(name, className, sessionDate)
		})
	}

	return cancelled, nil
}

func (s *service) MarkAttendance(ctx context.Context, orgID, bookingID int, outcome Status) (*Booking, error) {
	if outcome != StatusAttended && outcome != StatusNoShow {
		return nil, ErrInvalidState
	}
	return s.repo.MarkAttendance(ctx, orgID, bookingID, outcome, s.clock.Now())
}

func (s *service) Get(ctx context.Context, orgID, id int) (*Booking, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *service) ListForMember(ctx context.Context, orgID, memberID int) ([]BookingWithDetails, error) {
	return s.repo.ListForMember(ctx, orgID, memberID)
}

func (s *service) ListForSchedule(ctx context.Context, orgID, scheduleID int) ([]BookingWithDetails, error) {
	return s.repo.ListForSchedule(ctx, orgID, scheduleID)
}

func (s *service) SendClassReminders(ctx context.Context) (int, error) {
	now := s.clock.Now()
	rows, err := s.repo.ListReminderWindow(ctx, now, now.Add(time.Hour))
	if err != nil {
		return 0, err
	}

	for _, row := range rows {
		startsAt := sessionStart(row.ScheduledDate, row.StartTime)
		className := row.ClassName
		s.notifyMember(ctx, row.MemberID, func(name string) (string, string) {
			return notification.ClassReminder(name, className, startsAt)
		})
	}

	return len(rows), nil
}

// sessionDetails fetches display data for notification copy. Failures fall
// back to a generic class name rather than blocking the booking flow.
func (s *service) sessionDetails(ctx context.Context, orgID, scheduleID int) (string, time.Time) {
	sched, err := s.classRepo.GetScheduleByID(ctx, orgID, scheduleID)
	if err != nil {
		logger.Error("Schedule lookup failed for notification", "schedule_id", scheduleID, "err", err)
		return "your class", s.clock.Today()
	}

	cls, err := s.classRepo.GetClassByID(ctx, orgID, sched.ClassID)
	if err != nil {
		logger.Error("Class lookup failed for notification", "class_id", sched.ClassID, "err", err)
		return "your class", sessionStart(sched.ScheduledDate, sched.StartTime)
	}

	return cls.Name, sessionStart(sched.ScheduledDate, sched.StartTime)
}

func sessionStart(scheduledDate time.Time, startTime string) time.Time {
	t, err := time.Parse("15:04:05", startTime)
	if err != nil {
		return scheduledDate
	}
	return time.Date(scheduledDate.Year(), scheduledDate.Month(), scheduledDate.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (s *service) notifyMember(ctx context.Context, memberID int, build func(name string) (string, string)) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, memberID)
	if err != nil {
		logger.Error("Notification skipped, member lookup failed", "member_id", memberID, "err", err)
		return
	}

	subject, body := build(u.Name)
	rec := notification.Recipient{Name: u.Name, Email: u.Email}
	if u.Phone != nil {
		rec.Phone = *u.Phone
	}
	s.notifier.Notify(ctx, rec, subject, body)
}
