package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/membership"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
	"github.com/akshith-07/fitflow-pro/internal/notification"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

type Service interface {
	Get(ctx context.Context, orgID, id int) (*Payment, error)
	List(ctx context.Context, orgID int, status Status, limit, offset int) ([]Payment, error)

	// ProcessDue charges every membership whose auto-renewing term ends
	// today. Scheduled daily; reruns converge on the same payment rows.
	ProcessDue(ctx context.Context) (int, error)

	// RetryDue re-attempts pending payments whose backoff has elapsed.
	// Scheduled hourly.
	RetryDue(ctx context.Context) (int, error)

	// Retry re-attempts a single payment. A payment that is no longer
	// pending is left alone.
	Retry(ctx context.Context, orgID, id int) (*Payment, error)

	Refund(ctx context.Context, orgID, id int, amountCents int64) (*Payment, error)

	// SendReminders notifies members of pending payments coming due.
	// Scheduled daily.
	SendReminders(ctx context.Context) (int, error)
}

type Config struct {
	MaxRetries     int
	RetryBackoff   time.Duration
	GatewayTimeout time.Duration
	ReminderDays   int
}

type service struct {
	repo          Repository
	membershipSvc membership.Service
	userRepo      user.Repository
	notifier      *notification.Manager
	gateway       Gateway
	clock         clock.Clock
	cfg           Config
}

func NewService(repo Repository, membershipSvc membership.Service, userRepo user.Repository, notifier *notification.Manager, gateway Gateway, clk clock.Clock, cfg Config) Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 24 * time.Hour
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	if cfg.ReminderDays <= 0 {
		cfg.ReminderDays = 3
	}

	return &service{
		repo:          repo,
		membershipSvc: membershipSvc,
		userRepo:      userRepo,
		notifier:      notifier,
		gateway:       gateway,
		clock:         clk,
		cfg:           cfg,
	}
}

func (s *service) Get(ctx context.Context, orgID, id int) (*Payment, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *service) List(ctx context.Context, orgID int, status Status, limit, offset int) ([]Payment, error) {
	return s.repo.List(ctx, orgID, status, limit, offset)
}

func (s *service) ProcessDue(ctx context.Context) (int, error) {
	due, err := s.membershipSvc.DueForRenewal(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, m := range due {
		plan, err := s.membershipSvc.GetPlan(ctx, m.OrganizationID, m.PlanID)
		if err != nil {
			logger.Error("Skipping renewal charge, plan lookup failed", "membership_id", m.ID, "err", err)
			continue
		}

		p, err := s.repo.GetOrCreatePending(ctx, m.OrganizationID, m.ID, plan.PriceCents, plan.Currency, m.EndDate)
		if err != nil {
			logger.Error("Skipping renewal charge, payment row failed", "membership_id", m.ID, "err", err)
			continue
		}

		s.attempt(ctx, p)
		processed++
	}

	return processed, nil
}

func (s *service) RetryDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListRetryDue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	for _, p := range due {
		p := p
		s.attempt(ctx, &p)
	}

	return len(due), nil
}

func (s *service) Retry(ctx context.Context, orgID, id int) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		logger.Info("Retry skipped, payment not pending", "payment_id", p.ID, "status", p.Status)
		return p, nil
	}

	s.attempt(ctx, p)
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *service) Refund(ctx context.Context, orgID, id int, amountCents int64) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted || p.TransactionRef == nil {
		return nil, ErrNotRefundable
	}
	if amountCents <= 0 || amountCents > p.AmountCents {
		return nil, ErrNotRefundable
	}

	refundCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()
	if err := s.gateway.Refund(refundCtx, *p.TransactionRef, amountCents); err != nil {
		return nil, err
	}

	return s.repo.MarkRefunded(ctx, orgID, id)
}

func (s *service) SendReminders(ctx context.Context) (int, error) {
	from := s.clock.Today()
	to := from.AddDate(0, 0, s.cfg.ReminderDays)

	due, err := s.repo.ListDueSoon(ctx, from, to)
	if err != nil {
		return 0, err
	}

	for _, p := range due {
		amount := p.AmountCents
		currency := p.Currency
		dueDate := p.DueDate
		s.notifyMemberOf(ctx, &p, func(name string) (string, string) {
			return notification.PaymentReminder(name, amount, currency, dueDate)
		})
	}

	return len(due), nil
}

// attempt runs one charge cycle for a payment: claim, charge, settle. The
// claim is a guarded status flip, so a payment that is no longer pending is
// skipped without touching the gateway.
func (s *service) attempt(ctx context.Context, p *Payment) {
	claimed, err := s.repo.MarkProcessing(ctx, p.ID)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			logger.Info("Charge attempt skipped, payment not pending", "payment_id", p.ID)
			return
		}
		logger.Error("Charge attempt aborted", "payment_id", p.ID, "err", err)
		return
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	customerRef := fmt.Sprintf("membership_%d", claimed.MembershipID)
	result, chargeErr := s.gateway.Charge(chargeCtx, customerRef, claimed.AmountCents, claimed.Currency)
	if chargeErr == nil {
		s.settleSuccess(ctx, claimed, result.TransactionRef)
		return
	}

	s.settleFailure(ctx, claimed, chargeErr)
}

func (s *service) settleSuccess(ctx context.Context, p *Payment, transactionRef string) {
	metrics.RecordPaymentAttempt("success")

	completed, err := s.repo.MarkCompleted(ctx, p.ID, transactionRef)
	if err != nil {
		logger.Error("Payment completed at gateway but not recorded", "payment_id", p.ID, "err", err)
		return
	}

	logger.Info("Payment completed", "payment_id", completed.ID, "membership_id", completed.MembershipID)

	if _, err := s.membershipSvc.Renew(ctx, completed.OrganizationID, completed.MembershipID); err != nil {
		logger.Error("Renewal after successful charge failed", "membership_id", completed.MembershipID, "err", err)
	}

	amount := completed.AmountCents
	currency := completed.Currency
	s.notifyMemberOf(ctx, completed, func(name string) (string, string) {
		return notification.PaymentReceipt(name, amount, currency)
	})
}

func (s *service) settleFailure(ctx context.Context, p *Payment, chargeErr error) {
	metrics.RecordPaymentAttempt("failure")

	var gwErr *GatewayError
	hardDecline := errors.As(chargeErr, &gwErr) && !gwErr.Retryable

	attempts := p.RetryCount + 1
	if !hardDecline && attempts < s.cfg.MaxRetries {
		nextRetry := s.clock.Now().Add(s.cfg.RetryBackoff)
		if _, err := s.repo.ScheduleRetry(ctx, p.ID, nextRetry); err != nil {
			logger.Error("Failed to schedule payment retry", "payment_id", p.ID, "err", err)
			return
		}
		logger.Warn("Charge failed, retry scheduled",
			"payment_id", p.ID, "attempt", attempts, "next_retry_at", nextRetry, "err", chargeErr)
		return
	}

	s.escalate(ctx, p, chargeErr)
}

// escalate gives up on the payment: failed status, protective freeze, member
// notified.
func (s *service) escalate(ctx context.Context, p *Payment, chargeErr error) {
	metrics.RecordPaymentEscalation()

	failed, err := s.repo.MarkFailed(ctx, p.ID)
	if err != nil {
		logger.Error("Failed to mark payment failed", "payment_id", p.ID, "err", err)
		return
	}

	logger.Error("Payment escalated after final failure",
		"payment_id", failed.ID, "membership_id", failed.MembershipID, "err", chargeErr)

	if _, err := s.membershipSvc.ForceFreeze(ctx, failed.MembershipID); err != nil {
		logger.Error("Protective freeze failed", "membership_id", failed.MembershipID, "err", err)
	}

	s.notifyMemberOf(ctx, failed, func(name string) (string, string) {
		return notification.PaymentFailed(name)
	})
}

// notifyMemberOf resolves the paying member through the membership row and
// fires a best-effort notification.
func (s *service) notifyMemberOf(ctx context.Context, p *Payment, build func(name string) (string, string)) {
	if s.notifier == nil {
		return
	}

	m, err := s.membershipSvc.Get(ctx, p.OrganizationID, p.MembershipID)
	if err != nil {
		logger.Error("Notification skipped, membership lookup failed", "membership_id", p.MembershipID, "err", err)
		return
	}

	u, err := s.userRepo.FindByID(ctx, m.MemberID)
	if err != nil {
		logger.Error("Notification skipped, member lookup failed", "member_id", m.MemberID, "err", err)
		return
	}

	subject, body := build(u.Name)
	rec := notification.Recipient{Name: u.Name, Email: u.Email}
	if u.Phone != nil {
		rec.Phone = *u.Phone
	}
	s.notifier.Notify(ctx, rec, subject, body)
}
