package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/webpay"
)

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) CreatePaymentContext(ctx context.Context, pc models.PaymentContext) error {
	return m.Called(ctx, pc).Error(0)
}

func (m *PaymentRepoMock) GetPaymentContext(ctx context.Context, token string) (*models.PaymentContext, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentContext), args.Error(1)
}

func (m *PaymentRepoMock) DeletePaymentContext(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *PaymentRepoMock) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *PaymentRepoMock) SetOrderToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *PaymentRepoMock) SettleOrderPayment(ctx context.Context, id string, approved bool, paidAt time.Time) error {
	return m.Called(ctx, id, approved, paidAt).Error(0)
}

func (m *PaymentRepoMock) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *PaymentRepoMock) SetSubscriptionToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *PaymentRepoMock) ActivateSubscription(ctx context.Context, id string, startedAt, expiresAt time.Time, transactionID string) error {
	return m.Called(ctx, id, startedAt, expiresAt, transactionID).Error(0)
}

func (m *PaymentRepoMock) MarkSubscriptionPaymentFailed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PaymentRepoMock) ApplyUpgrade(ctx context.Context, id, newPlanID string, amount int, startedAt, expiresAt time.Time) error {
	return m.Called(ctx, id, newPlanID, amount, startedAt, expiresAt).Error(0)
}

func (m *PaymentRepoMock) RevertUpgrade(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateTransaction(ctx context.Context, reqParams webpay.CreateRequest) (*webpay.CreateResponse, error) {
	args := m.Called(ctx, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webpay.CreateResponse), args.Error(1)
}

func (m *GatewayMock) CommitTransaction(ctx context.Context, token string) (*webpay.CommitResponse, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webpay.CommitResponse), args.Error(1)
}

func newPaymentService(repo *PaymentRepoMock, gateway *GatewayMock) *PaymentService {
	return NewPaymentService(repo, gateway,
		"https://shop.example.com", "https://api.example.com", newTestLogger())
}

func TestPaymentService_InitOrderPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates transaction and context", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		gateway := new(GatewayMock)

		repo.On("GetOrder", ctx, "ORD-001").Return(&models.Order{
			ID: "ORD-001", UserID: "user-1",
			PaymentStatus: models.PaymentPending, Total: 41.0,
		}, nil)
		gateway.On("CreateTransaction", ctx, mock.MatchedBy(func(r webpay.CreateRequest) bool {
			return r.BuyOrder == "ORD-001" && r.Amount == 41 &&
				r.ReturnURL == "https://api.example.com/api/v1/payments/webpay/return"
		})).Return(&webpay.CreateResponse{Token: "tok-1", URL: "https://webpay.example"}, nil)
		repo.On("SetOrderToken", ctx, "ORD-001", "tok-1").Return(nil)
		repo.On("CreatePaymentContext", ctx, mock.MatchedBy(func(pc models.PaymentContext) bool {
			return pc.Token == "tok-1" && pc.Kind == models.PaymentKindOrder &&
				pc.OrderID == "ORD-001" && pc.Amount == 41
		})).Return(nil)

		svc := newPaymentService(repo, gateway)
		resp, err := svc.InitOrderPayment(ctx, "user-1", "ORD-001")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", resp.Token)
		repo.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("foreign order hidden", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("GetOrder", ctx, "ORD-001").Return(&models.Order{
			ID: "ORD-001", UserID: "someone-else", PaymentStatus: models.PaymentPending,
		}, nil)

		svc := newPaymentService(repo, new(GatewayMock))
		_, err := svc.InitOrderPayment(ctx, "user-1", "ORD-001")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("already settled order rejected", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("GetOrder", ctx, "ORD-001").Return(&models.Order{
			ID: "ORD-001", UserID: "user-1", PaymentStatus: models.PaymentPaid,
		}, nil)

		svc := newPaymentService(repo, new(GatewayMock))
		_, err := svc.InitOrderPayment(ctx, "user-1", "ORD-001")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestPaymentService_HandleReturn(t *testing.T) {
	ctx := context.Background()

	approvedCommit := &webpay.CommitResponse{Status: "AUTHORIZED", ResponseCode: 0}
	declinedCommit := &webpay.CommitResponse{Status: "FAILED", ResponseCode: -1}

	t.Run("approved order payment", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		gateway := new(GatewayMock)

		repo.On("GetPaymentContext", ctx, "tok-1").Return(&models.PaymentContext{
			Token: "tok-1", Kind: models.PaymentKindOrder, OrderID: "ORD-001",
		}, nil)
		gateway.On("CommitTransaction", ctx, "tok-1").Return(approvedCommit, nil)
		repo.On("SettleOrderPayment", ctx, "ORD-001", true, mock.Anything).Return(nil)
		repo.On("DeletePaymentContext", ctx, "tok-1").Return(nil)

		svc := newPaymentService(repo, gateway)
		result := svc.HandleReturn(ctx, "tok-1")
		assert.Equal(t,
			"https://shop.example.com/payment/result?orderId=ORD-001&status=success",
			result.RedirectURL)
		repo.AssertExpectations(t)
	})

	t.Run("declined order payment", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		gateway := new(GatewayMock)

		repo.On("GetPaymentContext", ctx, "tok-1").Return(&models.PaymentContext{
			Token: "tok-1", Kind: models.PaymentKindOrder, OrderID: "ORD-001",
		}, nil)
		gateway.On("CommitTransaction", ctx, "tok-1").Return(declinedCommit, nil)
		repo.On("SettleOrderPayment", ctx, "ORD-001", false, mock.Anything).Return(nil)
		repo.On("DeletePaymentContext", ctx, "tok-1").Return(nil)

		svc := newPaymentService(repo, gateway)
		result := svc.HandleReturn(ctx, "tok-1")
		assert.Equal(t,
			"https://shop.example.com/payment/result?orderId=ORD-001&status=failed",
			result.RedirectURL)
	})

	t.Run("approved subscription payment activates", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		gateway := new(GatewayMock)

		repo.On("GetPaymentContext", ctx, "tok-2").Return(&models.PaymentContext{
			Token: "tok-2", Kind: models.PaymentKindSubscription, SubscriptionID: "sub-1",
		}, nil)
		gateway.On("CommitTransaction", ctx, "tok-2").Return(approvedCommit, nil)
		repo.On("GetSubscription", ctx, "sub-1").Return(&models.Subscription{
			ID: "sub-1", PlanID: "MONTHLY",
		}, nil)
		repo.On("ActivateSubscription", ctx, "sub-1",
			mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("DeletePaymentContext", ctx, "tok-2").Return(nil)

		svc := newPaymentService(repo, gateway)
		result := svc.HandleReturn(ctx, "tok-2")
		assert.Equal(t,
			"https://shop.example.com/subscription/result?subscriptionId=sub-1&status=success",
			result.RedirectURL)
		repo.AssertExpectations(t)
	})

	t.Run("approved upgrade applies new plan", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		gateway := new(GatewayMock)

		repo.On("GetPaymentContext", ctx, "tok-3").Return(&models.PaymentContext{
			Token: "tok-3", Kind: models.PaymentKindUpgrade,
			SubscriptionID: "sub-1", NewPlanID: "ANNUAL", Amount: 60000,
		}, nil)
		gateway.On("CommitTransaction", ctx, "tok-3").Return(approvedCommit, nil)
		repo.On("ApplyUpgrade", ctx, "sub-1", "ANNUAL", 89990,
			mock.Anything, mock.Anything).Return(nil)
		repo.On("DeletePaymentContext", ctx, "tok-3").Return(nil)

		svc := newPaymentService(repo, gateway)
		result := svc.HandleReturn(ctx, "tok-3")
		assert.Equal(t,
			"https://shop.example.com/subscription/result?subscriptionId=sub-1&status=success",
			result.RedirectURL)
		repo.AssertExpectations(t)
	})

	t.Run("missing token redirects to error", func(t *testing.T) {
		svc := newPaymentService(new(PaymentRepoMock), new(GatewayMock))
		result := svc.HandleReturn(ctx, "")
		assert.Equal(t, "https://shop.example.com/payment/result?status=error", result.RedirectURL)
	})
}
