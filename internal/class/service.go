package class

import (
	"context"
	"time"

	"github.com/akshith-07/fitflow-pro/internal/clock"
)

type Service interface {
	CreateClass(ctx context.Context, orgID int, req CreateClassRequest) (*Class, error)
	ListClasses(ctx context.Context, orgID int) ([]Class, error)
	CreateSchedule(ctx context.Context, orgID int, req CreateScheduleRequest) (*Schedule, error)
	ListUpcoming(ctx context.Context, orgID int) ([]ScheduleWithAvailability, error)
	UpdateScheduleStatus(ctx context.Context, orgID, id int, status ScheduleStatus) (*Schedule, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk}
}

func (s *service) CreateClass(ctx context.Context, orgID int, req CreateClassRequest) (*Class, error) {
	return s.repo.CreateClass(ctx, orgID, req.Name, req.Category, req.Capacity, req.DurationMinutes, req.InstructorID)
}

func (s *service) ListClasses(ctx context.Context, orgID int) ([]Class, error) {
	return s.repo.ListClasses(ctx, orgID)
}

func (s *service) CreateSchedule(ctx context.Context, orgID int, req CreateScheduleRequest) (*Schedule, error) {
	cls, err := s.repo.GetClassByID(ctx, orgID, req.ClassID)
	if err != nil {
		return nil, err
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, ErrInvalidTime
	}

	startTime, err := parseClockTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseClockTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	if endTime <= startTime {
		return nil, ErrInvalidTime
	}

	instructorID := req.InstructorID
	if instructorID == 0 {
		instructorID = cls.InstructorID
	}

	return s.repo.CreateSchedule(ctx, orgID, cls.ID, instructorID, scheduledDate, startTime, endTime)
}

func (s *service) ListUpcoming(ctx context.Context, orgID int) ([]ScheduleWithAvailability, error) {
	return s.repo.ListUpcoming(ctx, orgID, s.clock.Today())
}

func (s *service) UpdateScheduleStatus(ctx context.Context, orgID, id int, status ScheduleStatus) (*Schedule, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.UpdateScheduleStatus(ctx, orgID, id, status)
}

// parseClockTime normalises "HH:MM" or "HH:MM:SS" input to "HH:MM:SS".
func parseClockTime(v string) (string, error) {
	if t, err := time.Parse("15:04", v); err == nil {
		return t.Format("15:04:05"), nil
	}
	if t, err := time.Parse("15:04:05", v); err == nil {
		return t.Format("15:04:05"), nil
	}
	return "", ErrInvalidTime
}
