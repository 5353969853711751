package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vmcandles/commerce-api/internal/lib/plans"
	"github.com/vmcandles/commerce-api/internal/lib/rabbitmq"
	"github.com/vmcandles/commerce-api/internal/models"
)

type RenewalRepoMock struct{ mock.Mock }

func (m *RenewalRepoMock) ListDueRenewals(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RenewalRepoMock) RenewSubscription(ctx context.Context, id string, expectedNextRenewal, newExpiry, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, expectedNextRenewal, newExpiry, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *RenewalRepoMock) ExpireSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RenewalRepoMock) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RenewalRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type NoticePublisherMock struct{ mock.Mock }

func (m *NoticePublisherMock) Publish(exchange, routingKey string, message any) error {
	return m.Called(exchange, routingKey, message).Error(0)
}

func dueSubscription(due time.Time) models.Subscription {
	return models.Subscription{
		ID:          "sub-1",
		UserID:      "user-1",
		PlanID:      plans.Monthly,
		Status:      models.SubscriptionActive,
		AutoRenew:   true,
		NextRenewal: &due,
	}
}

func TestRenewalService_Sweep(t *testing.T) {
	due := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("new period is anchored at the due date", func(t *testing.T) {
		repo := new(RenewalRepoMock)
		pub := new(NoticePublisherMock)
		repo.On("ListDueRenewals", mock.Anything, mock.Anything).
			Return([]models.Subscription{dueSubscription(due)}, nil)

		wantExpiry := due.AddDate(0, 1, 0)
		repo.On("RenewSubscription", mock.Anything, "sub-1", due, wantExpiry, mock.Anything).
			Return(true, nil)
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).
			Return([]models.Subscription{}, nil)
		repo.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{
			ID: "user-1", Email: "ana@example.com", FirstName: "Ana",
		}, nil)
		pub.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyRenewed,
			mock.MatchedBy(func(n RenewalNotice) bool {
				return n.Email == "ana@example.com" && n.ExpiresAt.Equal(wantExpiry)
			})).Return(nil)

		svc := NewRenewalService(repo, pub, newTestLogger())
		svc.Sweep(context.Background())

		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("failed renewal expires the subscription", func(t *testing.T) {
		repo := new(RenewalRepoMock)
		pub := new(NoticePublisherMock)
		repo.On("ListDueRenewals", mock.Anything, mock.Anything).
			Return([]models.Subscription{dueSubscription(due)}, nil)
		repo.On("RenewSubscription", mock.Anything, "sub-1", mock.Anything, mock.Anything, mock.Anything).
			Return(false, errors.New("charge declined"))
		repo.On("ExpireSubscription", mock.Anything, "sub-1").Return(nil)
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).
			Return([]models.Subscription{}, nil)
		repo.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{
			ID: "user-1", Email: "ana@example.com", FirstName: "Ana",
		}, nil)
		pub.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpired,
			mock.MatchedBy(func(n RenewalNotice) bool {
				return n.ExpiresAt.Equal(due)
			})).Return(nil)

		svc := NewRenewalService(repo, pub, newTestLogger())
		svc.Sweep(context.Background())

		repo.AssertExpectations(t)
		pub.AssertCalled(t, "Publish", rabbitmq.NotificationsExchange,
			rabbitmq.RoutingKeyExpired, mock.Anything)
	})

	t.Run("lost renewal race publishes nothing", func(t *testing.T) {
		repo := new(RenewalRepoMock)
		pub := new(NoticePublisherMock)
		repo.On("ListDueRenewals", mock.Anything, mock.Anything).
			Return([]models.Subscription{dueSubscription(due)}, nil)
		repo.On("RenewSubscription", mock.Anything, "sub-1", mock.Anything, mock.Anything, mock.Anything).
			Return(false, nil)
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).
			Return([]models.Subscription{}, nil)

		svc := NewRenewalService(repo, pub, newTestLogger())
		svc.Sweep(context.Background())

		repo.AssertNotCalled(t, "ExpireSubscription", mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lapsed subscriptions get expiry notices", func(t *testing.T) {
		repo := new(RenewalRepoMock)
		pub := new(NoticePublisherMock)
		expiredAt := due.AddDate(0, 0, -3)
		lapsed := models.Subscription{
			ID: "sub-2", UserID: "user-1", PlanID: plans.Annual,
			Status: models.SubscriptionExpired, ExpiresAt: &expiredAt,
		}
		repo.On("ListDueRenewals", mock.Anything, mock.Anything).
			Return([]models.Subscription{}, nil)
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).
			Return([]models.Subscription{lapsed}, nil)
		repo.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{
			ID: "user-1", Email: "ana@example.com", FirstName: "Ana",
		}, nil)
		pub.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpired,
			mock.MatchedBy(func(n RenewalNotice) bool {
				return n.PlanID == plans.Annual && n.ExpiresAt.Equal(expiredAt)
			})).Return(nil)

		svc := NewRenewalService(repo, pub, newTestLogger())
		svc.Sweep(context.Background())

		pub.AssertExpectations(t)
	})
}
