package membership

import (
	"context"
	"time"

	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
	"github.com/akshith-07/fitflow-pro/internal/notification"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

type Service interface {
	CreatePlan(ctx context.Context, orgID int, req CreatePlanRequest) (*Plan, error)
	ListPlans(ctx context.Context, orgID int) ([]Plan, error)

	Create(ctx context.Context, orgID int, req CreateRequest) (*Membership, error)
	Get(ctx context.Context, orgID, id int) (*Membership, error)
	List(ctx context.Context, orgID int, status Status, memberID, limit, offset int) ([]Membership, error)

	Freeze(ctx context.Context, orgID, id int, freezeStart, freezeEnd time.Time) (*Membership, error)
	Cancel(ctx context.Context, orgID, id int, reason string) (*Membership, error)
	Renew(ctx context.Context, orgID, id int) (*Membership, error)
	ForceFreeze(ctx context.Context, id int) (*Membership, error)

	GetPlan(ctx context.Context, orgID, planID int) (*Plan, error)

	CheckExpiring(ctx context.Context, horizonDays int) ([]Membership, error)

	// DueForRenewal lists active auto-renew memberships whose term ends
	// today; the payment orchestrator charges these.
	DueForRenewal(ctx context.Context) ([]Membership, error)

	// Scheduled entry points; all idempotent.
	AutoUnfreeze(ctx context.Context) (int, error)
	ExpireDue(ctx context.Context) (int, error)
	NotifyExpiring(ctx context.Context, horizonDays int) (int, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
	notifier *notification.Manager
	clock    clock.Clock
}

func NewService(repo Repository, userRepo user.Repository, notifier *notification.Manager, clk clock.Clock) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *service) CreatePlan(ctx context.Context, orgID int, req CreatePlanRequest) (*Plan, error) {
	return s.repo.CreatePlan(ctx, orgID, req.Name, req.PriceCents, req.Currency, req.DurationDays)
}

func (s *service) ListPlans(ctx context.Context, orgID int) ([]Plan, error) {
	return s.repo.ListPlans(ctx, orgID)
}

func (s *service) Create(ctx context.Context, orgID int, req CreateRequest) (*Membership, error) {
	plan, err := s.repo.GetPlanByID(ctx, orgID, req.PlanID)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	startDate = clock.Midnight(startDate)
	endDate := startDate.AddDate(0, 0, plan.DurationDays)

	m, err := s.repo.Create(ctx, orgID, req.MemberID, req.PlanID, startDate, endDate, req.AutoRenew)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("create")
	return m, nil
}

func (s *service) Get(ctx context.Context, orgID, id int) (*Membership, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *service) List(ctx context.Context, orgID int, status Status, memberID, limit, offset int) ([]Membership, error) {
	return s.repo.List(ctx, orgID, status, memberID, limit, offset)
}

func (s *service) Freeze(ctx context.Context, orgID, id int, freezeStart, freezeEnd time.Time) (*Membership, error) {
	freezeStart = clock.Midnight(freezeStart)
	freezeEnd = clock.Midnight(freezeEnd)

	freezeDays := int(freezeEnd.Sub(freezeStart).Hours() / 24)
	if freezeDays <= 0 {
		return nil, ErrInvalidFreeze
	}

	m, err := s.repo.Freeze(ctx, orgID, id, freezeStart, freezeEnd, freezeDays)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("freeze")
	logger.Info("Membership frozen", "membership_id", m.ID, "freeze_days", freezeDays, "new_end_date", m.EndDate.Format("2006-01-02"))

	s.notifyMember(ctx, m.MemberID, func(name string) (string, string) {
		return notification.MembershipFrozen(name, freezeEnd)
	})

	return m, nil
}

func (s *service) Cancel(ctx context.Context, orgID, id int, reason string) (*Membership, error) {
	today := s.clock.Today()

	m, err := s.repo.Cancel(ctx, orgID, id, reason, today)
	if err == ErrAlreadyCancelled {
		// Re-cancelling is a no-op: hand back the existing record.
		return m, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("cancel")
	logger.Info("Membership cancelled", "membership_id", m.ID, "reason", reason)

	s.notifyMember(ctx, m.MemberID, func(name string) (string, string) {
		return notification.MembershipCancelled(name, today)
	})

	return m, nil
}

func (s *service) Renew(ctx context.Context, orgID, id int) (*Membership, error) {
	old, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetPlanByID(ctx, orgID, old.PlanID)
	if err != nil {
		return nil, err
	}

	startDate := clock.Midnight(old.EndDate).AddDate(0, 0, 1)
	endDate := startDate.AddDate(0, 0, plan.DurationDays)

	successor, err := s.repo.Renew(ctx, old.ID, startDate, endDate, old.AutoRenew)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("renew")
	logger.Info("Membership renewed", "old_id", old.ID, "new_id", successor.ID, "end_date", successor.EndDate.Format("2006-01-02"))

	s.notifyMember(ctx, successor.MemberID, func(name string) (string, string) {
		return notification.MembershipRenewed(name, successor.EndDate)
	})

	return successor, nil
}

func (s *service) ForceFreeze(ctx context.Context, id int) (*Membership, error) {
	m, err := s.repo.ForceFreeze(ctx, id, s.clock.Today())
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("force_freeze")
	logger.Warn("Membership force-frozen", "membership_id", m.ID)

	return m, nil
}

func (s *service) GetPlan(ctx context.Context, orgID, planID int) (*Plan, error) {
	return s.repo.GetPlanByID(ctx, orgID, planID)
}

func (s *service) CheckExpiring(ctx context.Context, horizonDays int) ([]Membership, error) {
	return s.repo.ListExpiring(ctx, s.clock.Today(), horizonDays)
}

func (s *service) DueForRenewal(ctx context.Context) ([]Membership, error) {
	return s.repo.ListDueForRenewal(ctx, s.clock.Today())
}

func (s *service) AutoUnfreeze(ctx context.Context) (int, error) {
	unfrozen, err := s.repo.UnfreezeDue(ctx, s.clock.Today())
	if err != nil {
		return 0, err
	}

	for _, m := range unfrozen {
		metrics.RecordMembershipTransition("unfreeze")
		logger.Info("Membership unfrozen", "membership_id", m.ID)

		s.notifyMember(ctx, m.MemberID, func(name string) (string, string) {
			return notification.MembershipUnfrozen(name)
		})
	}

	return len(unfrozen), nil
}

func (s *service) ExpireDue(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireDue(ctx, s.clock.Today())
	if err != nil {
		return 0, err
	}

	for _, m := range expired {
		metrics.RecordMembershipTransition("expire")
		logger.Info("Membership expired", "membership_id", m.ID, "end_date", m.EndDate.Format("2006-01-02"))
	}

	return len(expired), nil
}

func (s *service) NotifyExpiring(ctx context.Context, horizonDays int) (int, error) {
	expiring, err := s.CheckExpiring(ctx, horizonDays)
	if err != nil {
		return 0, err
	}

	for _, m := range expiring {
		plan, err := s.repo.GetPlanByID(ctx, m.OrganizationID, m.PlanID)
		if err != nil {
			logger.Error("Skipping expiry notice, plan lookup failed", "membership_id", m.ID, "err", err)
			continue
		}

		endDate := m.EndDate
		autoRenew := m.AutoRenew
		s.notifyMember(ctx, m.MemberID, func(name string) (string, string) {
			return notification.MembershipExpiring(name, plan.Name, endDate, autoRenew)
		})
	}

	return len(expiring), nil
}

// notifyMember resolves the member's contact details and fires a best-effort
// notification. Lookup or delivery failures are logged, never returned.
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
