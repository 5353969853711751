package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
)

type SubscriptionRepoMock struct{ mock.Mock }

func (m *SubscriptionRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *SubscriptionRepoMock) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *SubscriptionRepoMock) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *SubscriptionRepoMock) ListSubscriptions(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error) {
	args := m.Called(ctx, status, page, limit)
	return args.Get(0).([]models.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *SubscriptionRepoMock) UpdateSubscriptionStatus(ctx context.Context, id, status string, autoRenew bool) error {
	return m.Called(ctx, id, status, autoRenew).Error(0)
}

func (m *SubscriptionRepoMock) SetAutoRenew(ctx context.Context, id string, autoRenew bool) error {
	return m.Called(ctx, id, autoRenew).Error(0)
}

func (m *SubscriptionRepoMock) SchedulePlanChange(ctx context.Context, id, newPlanID string) error {
	return m.Called(ctx, id, newPlanID).Error(0)
}

func (m *SubscriptionRepoMock) MarkUpgradePending(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SubscriptionRepoMock) ApplyUpgrade(ctx context.Context, id, newPlanID string, amount int, startedAt, expiresAt time.Time) error {
	return m.Called(ctx, id, newPlanID, amount, startedAt, expiresAt).Error(0)
}

func activeSubscription(planID string) *models.Subscription {
	started := time.Now().UTC().AddDate(0, 0, -10)
	expires := started.AddDate(0, 1, 0)
	return &models.Subscription{
		ID:            "sub-1",
		UserID:        "user-1",
		PlanID:        planID,
		Status:        models.SubscriptionActive,
		PaymentStatus: models.PaymentPaid,
		StartedAt:     &started,
		ExpiresAt:     &expires,
		NextRenewal:   &expires,
	}
}

func TestSubscriptionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending shell", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("HasActiveSubscription", ctx, "user-1").Return(false, nil)
		repo.On("CreateSubscription", ctx, mock.MatchedBy(func(sub models.Subscription) bool {
			return sub.Status == models.SubscriptionCancelled &&
				sub.PaymentStatus == models.PaymentPending &&
				sub.Amount == 9990
		})).Return("sub-1", nil)
		repo.On("GetSubscription", ctx, "sub-1").Return(&models.Subscription{ID: "sub-1"}, nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		sub, err := svc.Create(ctx, "user-1", models.CreateSubscriptionRequest{PlanID: "MONTHLY"})
		require.NoError(t, err)
		assert.Equal(t, "sub-1", sub.ID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects second active subscription", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("HasActiveSubscription", ctx, "user-1").Return(true, nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		_, err := svc.Create(ctx, "user-1", models.CreateSubscriptionRequest{PlanID: "ANNUAL"})
		assert.ErrorIs(t, err, ErrSubscriptionExists)
		repo.AssertNotCalled(t, "CreateSubscription")
	})
}

func TestSubscriptionService_ChangePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("upgrade quotes prorated charge", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("GetSubscription", ctx, "sub-1").Return(activeSubscription("MONTHLY"), nil)
		repo.On("MarkUpgradePending", ctx, "sub-1").Return(nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		quote, err := svc.ChangePlan(ctx, "sub-1", "user-1", models.ChangePlanRequest{NewPlanID: "ANNUAL"})
		require.NoError(t, err)
		assert.True(t, quote.RequiresPayment)
		assert.Greater(t, quote.AmountDue, 0)
		assert.Greater(t, quote.Credit, 0)
		// Unused monthly time can never credit more than the plan price.
		assert.LessOrEqual(t, quote.Credit, 9990)
		assert.Equal(t, "ANNUAL", quote.NewPlanID)
		repo.AssertExpectations(t)
	})

	t.Run("downgrade switches plan without payment", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("GetSubscription", ctx, "sub-1").Return(activeSubscription("ANNUAL"), nil)
		repo.On("SchedulePlanChange", ctx, "sub-1", "MONTHLY").Return(nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		quote, err := svc.ChangePlan(ctx, "sub-1", "user-1", models.ChangePlanRequest{NewPlanID: "MONTHLY"})
		require.NoError(t, err)
		assert.False(t, quote.RequiresPayment)
		assert.Zero(t, quote.AmountDue)
		repo.AssertNotCalled(t, "MarkUpgradePending")
	})

	t.Run("same plan rejected", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("GetSubscription", ctx, "sub-1").Return(activeSubscription("MONTHLY"), nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		_, err := svc.ChangePlan(ctx, "sub-1", "user-1", models.ChangePlanRequest{NewPlanID: "MONTHLY"})
		assert.ErrorIs(t, err, ErrSamePlan)
	})

	t.Run("inactive subscription rejected", func(t *testing.T) {
		sub := activeSubscription("MONTHLY")
		sub.Status = models.SubscriptionCancelled
		repo := new(SubscriptionRepoMock)
		repo.On("GetSubscription", ctx, "sub-1").Return(sub, nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		_, err := svc.ChangePlan(ctx, "sub-1", "user-1", models.ChangePlanRequest{NewPlanID: "ANNUAL"})
		assert.ErrorIs(t, err, ErrNotActive)
	})

	t.Run("foreign subscription hidden", func(t *testing.T) {
		repo := new(SubscriptionRepoMock)
		repo.On("GetSubscription", ctx, "sub-1").Return(activeSubscription("MONTHLY"), nil)

		svc := NewSubscriptionService(repo, newTestLogger())
		_, err := svc.ChangePlan(ctx, "sub-1", "someone-else", models.ChangePlanRequest{NewPlanID: "ANNUAL"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubscriptionService_Cancel(t *testing.T) {
	ctx := context.Background()

	repo := new(SubscriptionRepoMock)
	repo.On("GetSubscription", ctx, "sub-1").Return(activeSubscription("MONTHLY"), nil)
	repo.On("UpdateSubscriptionStatus", ctx, "sub-1", models.SubscriptionCancelled, false).Return(nil)

	svc := NewSubscriptionService(repo, newTestLogger())
	_, err := svc.Cancel(ctx, "sub-1", "user-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
