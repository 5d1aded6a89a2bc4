package payment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/membership"
	"github.com/akshith-07/fitflow-pro/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockRepo struct{ mock.Mock }

func (m *MockRepo) GetOrCreatePending(ctx context.Context, orgID, membershipID int, amountCents int64, currency string, dueDate time.Time) (*Payment, error) {
	args := m.Called(ctx, orgID, membershipID, amountCents, currency, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, orgID, id int) (*Payment, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) List(ctx context.Context, orgID int, status Status, limit, offset int) ([]Payment, error) {
	args := m.Called(ctx, orgID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockRepo) MarkProcessing(ctx context.Context, id int) (*Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) MarkCompleted(ctx context.Context, id int, transactionRef string) (*Payment, error) {
	args := m.Called(ctx, id, transactionRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) MarkFailed(ctx context.Context, id int) (*Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) ScheduleRetry(ctx context.Context, id int, nextRetryAt time.Time) (*Payment, error) {
	args := m.Called(ctx, id, nextRetryAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) MarkRefunded(ctx context.Context, orgID, id int) (*Payment, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepo) ListRetryDue(ctx context.Context, now time.Time) ([]Payment, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockRepo) ListDueSoon(ctx context.Context, from, to time.Time) ([]Payment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Payment), args.Error(1)
}

type MockMembershipSvc struct{ mock.Mock }

func (m *MockMembershipSvc) CreatePlan(ctx context.Context, orgID int, req membership.CreatePlanRequest) (*membership.Plan, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Plan), args.Error(1)
}

func (m *MockMembershipSvc) ListPlans(ctx context.Context, orgID int) ([]membership.Plan, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Plan), args.Error(1)
}

func (m *MockMembershipSvc) Create(ctx context.Context, orgID int, req membership.CreateRequest) (*membership.Membership, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) Get(ctx context.Context, orgID, id int) (*membership.Membership, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) List(ctx context.Context, orgID int, status membership.Status, memberID, limit, offset int) ([]membership.Membership, error) {
	args := m.Called(ctx, orgID, status, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) Freeze(ctx context.Context, orgID, id int, freezeStart, freezeEnd time.Time) (*membership.Membership, error) {
	args := m.Called(ctx, orgID, id, freezeStart, freezeEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) Cancel(ctx context.Context, orgID, id int, reason string) (*membership.Membership, error) {
	args := m.Called(ctx, orgID, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) Renew(ctx context.Context, orgID, id int) (*membership.Membership, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) ForceFreeze(ctx context.Context, id int) (*membership.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) GetPlan(ctx context.Context, orgID, planID int) (*membership.Plan, error) {
	args := m.Called(ctx, orgID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Plan), args.Error(1)
}

func (m *MockMembershipSvc) CheckExpiring(ctx context.Context, horizonDays int) ([]membership.Membership, error) {
	args := m.Called(ctx, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) DueForRenewal(ctx context.Context) ([]membership.Membership, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Membership), args.Error(1)
}

func (m *MockMembershipSvc) AutoUnfreeze(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMembershipSvc) ExpireDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMembershipSvc) NotifyExpiring(ctx context.Context, horizonDays int) (int, error) {
	args := m.Called(ctx, horizonDays)
	return args.Int(0), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, orgID int, name, email, phone, passwordHash, role string) (*user.User, error) {
	args := m.Called(ctx, orgID, name, email, phone, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// The simulated gateway approves any amount not ending in 99 or 13 cents.
const (
	okAmount        = int64(4900)
	retryableAmount = int64(4999)
	declinedAmount  = int64(4913)
)

func newTestService(repo *MockRepo, msvc *MockMembershipSvc, clk clock.Clock) Service {
	return NewService(repo, msvc, new(MockUserRepo), nil, &SimulatedGateway{}, clk, Config{
		MaxRetries:     3,
		RetryBackoff:   24 * time.Hour,
		GatewayTimeout: time.Second,
		ReminderDays:   3,
	})
}

func pendingPayment(id, membershipID, retryCount int, amount int64) *Payment {
	return &Payment{
		ID:             id,
		OrganizationID: 1,
		MembershipID:   membershipID,
		AmountCents:    amount,
		Currency:       "USD",
		Status:         StatusPending,
		DueDate:        date("2024-01-10"),
		RetryCount:     retryCount,
	}
}

func processingCopy(p *Payment) *Payment {
	c := *p
	c.Status = StatusProcessing
	return &c
}

func TestProcessDueChargesAndRenews(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-10"))
	svc := newTestService(repo, msvc, clk)

	m := membership.Membership{ID: 5, OrganizationID: 1, MemberID: 9, PlanID: 2, EndDate: date("2024-01-10"), AutoRenew: true}
	msvc.On("DueForRenewal", mock.Anything).Return([]membership.Membership{m}, nil)
	msvc.On("GetPlan", mock.Anything, 1, 2).Return(&membership.Plan{ID: 2, PriceCents: okAmount, Currency: "USD"}, nil)

	p := pendingPayment(21, 5, 0, okAmount)
	repo.On("GetOrCreatePending", mock.Anything, 1, 5, okAmount, "USD", date("2024-01-10")).Return(p, nil)
	repo.On("MarkProcessing", mock.Anything, 21).Return(processingCopy(p), nil)

	completed := *p
	completed.Status = StatusCompleted
	repo.On("MarkCompleted", mock.Anything, 21, mock.AnythingOfType("string")).Return(&completed, nil)
	msvc.On("Renew", mock.Anything, 1, 5).Return(&membership.Membership{ID: 6}, nil)

	n, err := svc.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)
	msvc.AssertExpectations(t)
}

func TestRetryableFailureSchedulesBackoff(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC))
	svc := newTestService(repo, msvc, clk)

	p := pendingPayment(21, 5, 0, retryableAmount)
	repo.On("ListRetryDue", mock.Anything, clk.Now()).Return([]Payment{*p}, nil)
	repo.On("MarkProcessing", mock.Anything, 21).Return(processingCopy(p), nil)
	repo.On("ScheduleRetry", mock.Anything, 21, clk.Now().Add(24*time.Hour)).Return(p, nil)

	n, err := svc.RetryDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertNotCalled(t, "MarkFailed")
	msvc.AssertNotCalled(t, "ForceFreeze")
	repo.AssertExpectations(t)
}

func TestThirdFailureEscalates(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(time.Date(2024, 1, 13, 2, 0, 0, 0, time.UTC))
	svc := newTestService(repo, msvc, clk)

	// Two prior failures recorded; this attempt is the third strike.
	p := pendingPayment(21, 5, 2, retryableAmount)
	repo.On("ListRetryDue", mock.Anything, clk.Now()).Return([]Payment{*p}, nil)
	repo.On("MarkProcessing", mock.Anything, 21).Return(processingCopy(p), nil)

	failed := *p
	failed.Status = StatusFailed
	repo.On("MarkFailed", mock.Anything, 21).Return(&failed, nil)
	msvc.On("ForceFreeze", mock.Anything, 5).Return(&membership.Membership{ID: 5, Status: membership.StatusFrozen}, nil)

	_, err := svc.RetryDue(context.Background())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ScheduleRetry")
	repo.AssertExpectations(t)
	msvc.AssertExpectations(t)
}

func TestHardDeclineFailsFast(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC))
	svc := newTestService(repo, msvc, clk)

	// First attempt, but the decline is not retryable.
	p := pendingPayment(21, 5, 0, declinedAmount)
	repo.On("ListRetryDue", mock.Anything, clk.Now()).Return([]Payment{*p}, nil)
	repo.On("MarkProcessing", mock.Anything, 21).Return(processingCopy(p), nil)

	failed := *p
	failed.Status = StatusFailed
	repo.On("MarkFailed", mock.Anything, 21).Return(&failed, nil)
	msvc.On("ForceFreeze", mock.Anything, 5).Return(&membership.Membership{ID: 5, Status: membership.StatusFrozen}, nil)

	_, err := svc.RetryDue(context.Background())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ScheduleRetry")
	msvc.AssertExpectations(t)
}

func TestRetrySkipsSettledPayment(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-14"))
	svc := newTestService(repo, msvc, clk)

	failed := pendingPayment(21, 5, 3, retryableAmount)
	failed.Status = StatusFailed
	repo.On("GetByID", mock.Anything, 1, 21).Return(failed, nil)

	got, err := svc.Retry(context.Background(), 1, 21)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	repo.AssertNotCalled(t, "MarkProcessing")
}

func TestConcurrentClaimLosesCleanly(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC))
	svc := newTestService(repo, msvc, clk)

	p := pendingPayment(21, 5, 0, okAmount)
	repo.On("ListRetryDue", mock.Anything, clk.Now()).Return([]Payment{*p}, nil)
	repo.On("MarkProcessing", mock.Anything, 21).Return(nil, ErrNotPending)

	_, err := svc.RetryDue(context.Background())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "MarkCompleted")
	repo.AssertNotCalled(t, "MarkFailed")
	repo.AssertNotCalled(t, "ScheduleRetry")
}

func TestRefund(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-14"))
	svc := newTestService(repo, msvc, clk)

	ref := "sim_membership_5_abc"
	completed := pendingPayment(21, 5, 0, okAmount)
	completed.Status = StatusCompleted
	completed.TransactionRef = &ref
	repo.On("GetByID", mock.Anything, 1, 21).Return(completed, nil)

	refunded := *completed
	refunded.Status = StatusRefunded
	repo.On("MarkRefunded", mock.Anything, 1, 21).Return(&refunded, nil)

	got, err := svc.Refund(context.Background(), 1, 21, okAmount)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, got.Status)
}

func TestRefundRejectsPendingPayment(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-14"))
	svc := newTestService(repo, msvc, clk)

	repo.On("GetByID", mock.Anything, 1, 21).Return(pendingPayment(21, 5, 0, okAmount), nil)

	_, err := svc.Refund(context.Background(), 1, 21, okAmount)
	assert.ErrorIs(t, err, ErrNotRefundable)
	repo.AssertNotCalled(t, "MarkRefunded")
}

func TestRefundRejectsExcessAmount(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-14"))
	svc := newTestService(repo, msvc, clk)

	ref := "sim_membership_5_abc"
	completed := pendingPayment(21, 5, 0, okAmount)
	completed.Status = StatusCompleted
	completed.TransactionRef = &ref
	repo.On("GetByID", mock.Anything, 1, 21).Return(completed, nil)

	_, err := svc.Refund(context.Background(), 1, 21, okAmount+1)
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestSendReminders(t *testing.T) {
	repo := new(MockRepo)
	msvc := new(MockMembershipSvc)
	clk := clock.Fixed(date("2024-01-10"))
	svc := newTestService(repo, msvc, clk)

	due := []Payment{*pendingPayment(21, 5, 0, okAmount), *pendingPayment(22, 6, 0, okAmount)}
	repo.On("ListDueSoon", mock.Anything, date("2024-01-10"), date("2024-01-13")).Return(due, nil)

	n, err := svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
