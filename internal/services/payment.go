package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vmcandles/commerce-api/internal/lib/plans"
	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/webpay"
)

type WebpayClient interface {
	CreateTransaction(ctx context.Context, reqParams webpay.CreateRequest) (*webpay.CreateResponse, error)
	CommitTransaction(ctx context.Context, token string) (*webpay.CommitResponse, error)
}

type PaymentRepository interface {
	CreatePaymentContext(ctx context.Context, pc models.PaymentContext) error
	GetPaymentContext(ctx context.Context, token string) (*models.PaymentContext, error)
	DeletePaymentContext(ctx context.Context, token string) error

	GetOrder(ctx context.Context, id string) (*models.Order, error)
	SetOrderToken(ctx context.Context, id, token string) error
	SettleOrderPayment(ctx context.Context, id string, approved bool, paidAt time.Time) error

	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	SetSubscriptionToken(ctx context.Context, id, token string) error
	ActivateSubscription(ctx context.Context, id string, startedAt, expiresAt time.Time, transactionID string) error
	MarkSubscriptionPaymentFailed(ctx context.Context, id string) error
	ApplyUpgrade(ctx context.Context, id, newPlanID string, amount int, startedAt, expiresAt time.Time) error
	RevertUpgrade(ctx context.Context, id string) error
}

// PaymentResult tells the return handler where to send the customer
// after a gateway callback.
type PaymentResult struct {
	RedirectURL string
}

// InitResponse is what payment initialization hands to the frontend.
type InitResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// PaymentService drives the Webpay flows. Every created transaction
// gets a payment context keyed by the gateway token, so the return
// callback can settle orders, new subscriptions and plan upgrades
// through one code path.
type PaymentService struct {
	repo        PaymentRepository
	gateway     WebpayClient
	frontendURL string
	backendURL  string
	log         *slog.Logger
}

func NewPaymentService(repo PaymentRepository, gateway WebpayClient, frontendURL, backendURL string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:        repo,
		gateway:     gateway,
		frontendURL: frontendURL,
		backendURL:  backendURL,
		log:         log,
	}
}

// ReturnURL is where Transbank sends the customer back to.
func (s *PaymentService) ReturnURL() string {
	return s.backendURL + "/api/v1/payments/webpay/return"
}

func (s *PaymentService) orderResultURL(orderID, status string) string {
	if orderID == "" {
		return fmt.Sprintf("%s/payment/result?status=%s", s.frontendURL, status)
	}
	return fmt.Sprintf("%s/payment/result?orderId=%s&status=%s", s.frontendURL, orderID, status)
}

func (s *PaymentService) subscriptionResultURL(subscriptionID, status string) string {
	if subscriptionID == "" {
		return fmt.Sprintf("%s/subscription/result?status=%s", s.frontendURL, status)
	}
	return fmt.Sprintf("%s/subscription/result?subscriptionId=%s&status=%s", s.frontendURL, subscriptionID, status)
}

// InitOrderPayment starts a Webpay transaction for a pending order.
func (s *PaymentService) InitOrderPayment(ctx context.Context, userID, orderID string) (*InitResponse, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPending {
		return nil, ErrInvalidStatus
	}

	amount := int(math.Round(order.Total))
	resp, err := s.gateway.CreateTransaction(ctx, webpay.CreateRequest{
		BuyOrder:  order.ID,
		SessionID: userID,
		Amount:    amount,
		ReturnURL: s.ReturnURL(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetOrderToken(ctx, order.ID, resp.Token); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePaymentContext(ctx, models.PaymentContext{
		Token:   resp.Token,
		Kind:    models.PaymentKindOrder,
		UserID:  userID,
		OrderID: order.ID,
		Amount:  amount,
	}); err != nil {
		return nil, err
	}

	s.log.Info("initialized order payment",
		slog.String("order_id", order.ID), slog.Int("amount", amount))
	return &InitResponse{Token: resp.Token, URL: resp.URL}, nil
}

// InitSubscriptionPayment starts a Webpay transaction for a pending
// subscription.
func (s *PaymentService) InitSubscriptionPayment(ctx context.Context, userID, subscriptionID string) (*InitResponse, error) {
	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotFound
	}
	if sub.PaymentStatus != models.PaymentPending {
		return nil, ErrInvalidStatus
	}

	amount := sub.Amount
	if amount == 0 {
		amount = plans.Price(sub.PlanID)
	}

	resp, err := s.gateway.CreateTransaction(ctx, webpay.CreateRequest{
		BuyOrder:  truncateBuyOrder("SUB-" + sub.ID),
		SessionID: userID,
		Amount:    amount,
		ReturnURL: s.ReturnURL(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetSubscriptionToken(ctx, sub.ID, resp.Token); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePaymentContext(ctx, models.PaymentContext{
		Token:          resp.Token,
		Kind:           models.PaymentKindSubscription,
		UserID:         userID,
		SubscriptionID: sub.ID,
		Amount:         amount,
	}); err != nil {
		return nil, err
	}

	s.log.Info("initialized subscription payment",
		slog.String("subscription_id", sub.ID), slog.Int("amount", amount))
	return &InitResponse{Token: resp.Token, URL: resp.URL}, nil
}

// InitUpgradePayment charges the prorated difference for a plan
// upgrade that is pending payment.
func (s *PaymentService) InitUpgradePayment(ctx context.Context, userID, subscriptionID, newPlanID string, amount int) (*InitResponse, error) {
	resp, err := s.gateway.CreateTransaction(ctx, webpay.CreateRequest{
		BuyOrder:  truncateBuyOrder("UPG-" + subscriptionID),
		SessionID: userID,
		Amount:    amount,
		ReturnURL: s.ReturnURL(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetSubscriptionToken(ctx, subscriptionID, resp.Token); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePaymentContext(ctx, models.PaymentContext{
		Token:          resp.Token,
		Kind:           models.PaymentKindUpgrade,
		UserID:         userID,
		SubscriptionID: subscriptionID,
		NewPlanID:      newPlanID,
		Amount:         amount,
	}); err != nil {
		return nil, err
	}

	s.log.Info("initialized upgrade payment",
		slog.String("subscription_id", subscriptionID),
		slog.String("new_plan", newPlanID), slog.Int("amount", amount))
	return &InitResponse{Token: resp.Token, URL: resp.URL}, nil
}

// HandleReturn commits the gateway transaction and settles whatever
// the token was created for. It always produces a redirect, the
// customer is standing on a Transbank page waiting to be sent back.
func (s *PaymentService) HandleReturn(ctx context.Context, token string) PaymentResult {
	if token == "" {
		return PaymentResult{RedirectURL: s.orderResultURL("", "error")}
	}

	pc, err := s.repo.GetPaymentContext(ctx, token)
	if err != nil {
		s.log.Error("payment context not found", slog.String("token", token), slog.Any("err", err))
		return PaymentResult{RedirectURL: s.orderResultURL("", "error")}
	}

	commit, err := s.gateway.CommitTransaction(ctx, token)
	if err != nil {
		s.log.Error("webpay commit failed", slog.String("token", token), slog.Any("err", err))
		return s.settleFailure(ctx, pc)
	}

	approved := commit.Approved()
	result := s.settle(ctx, pc, commit, approved)

	if err := s.repo.DeletePaymentContext(ctx, token); err != nil {
		s.log.Warn("failed to delete payment context", slog.String("token", token), slog.Any("err", err))
	}
	return result
}

func (s *PaymentService) settle(ctx context.Context, pc *models.PaymentContext, commit *webpay.CommitResponse, approved bool) PaymentResult {
	status := "failed"
	if approved {
		status = "success"
	}
	now := time.Now().UTC()

	switch pc.Kind {
	case models.PaymentKindOrder:
		if err := s.repo.SettleOrderPayment(ctx, pc.OrderID, approved, now); err != nil {
			s.log.Error("failed to settle order payment",
				slog.String("order_id", pc.OrderID), slog.Any("err", err))
			return PaymentResult{RedirectURL: s.orderResultURL(pc.OrderID, "error")}
		}
		s.log.Info("settled order payment", slog.String("order_id", pc.OrderID),
			slog.String("status", status), slog.String("auth_code", commit.AuthorizationCode))
		return PaymentResult{RedirectURL: s.orderResultURL(pc.OrderID, status)}

	case models.PaymentKindSubscription:
		sub, err := s.repo.GetSubscription(ctx, pc.SubscriptionID)
		if err != nil {
			return PaymentResult{RedirectURL: s.subscriptionResultURL(pc.SubscriptionID, "error")}
		}
		if approved {
			expiry := plans.NextPeriod(sub.PlanID, now)
			err = s.repo.ActivateSubscription(ctx, sub.ID, now, expiry, commit.TransactionDate)
		} else {
			err = s.repo.MarkSubscriptionPaymentFailed(ctx, sub.ID)
		}
		if err != nil {
			s.log.Error("failed to settle subscription payment",
				slog.String("subscription_id", sub.ID), slog.Any("err", err))
			return PaymentResult{RedirectURL: s.subscriptionResultURL(sub.ID, "error")}
		}
		s.log.Info("settled subscription payment",
			slog.String("subscription_id", sub.ID), slog.String("status", status))
		return PaymentResult{RedirectURL: s.subscriptionResultURL(sub.ID, status)}

	case models.PaymentKindUpgrade:
		var err error
		if approved {
			expiry := plans.NextPeriod(pc.NewPlanID, now)
			err = s.repo.ApplyUpgrade(ctx, pc.SubscriptionID, pc.NewPlanID,
				plans.Price(pc.NewPlanID), now, expiry)
		} else {
			err = s.repo.RevertUpgrade(ctx, pc.SubscriptionID)
		}
		if err != nil {
			s.log.Error("failed to settle upgrade payment",
				slog.String("subscription_id", pc.SubscriptionID), slog.Any("err", err))
			return PaymentResult{RedirectURL: s.subscriptionResultURL(pc.SubscriptionID, "error")}
		}
		s.log.Info("settled upgrade payment",
			slog.String("subscription_id", pc.SubscriptionID), slog.String("status", status))
		return PaymentResult{RedirectURL: s.subscriptionResultURL(pc.SubscriptionID, status)}
	}

	s.log.Error("unknown payment context kind", slog.String("kind", pc.Kind))
	return PaymentResult{RedirectURL: s.orderResultURL("", "error")}
}

func (s *PaymentService) settleFailure(ctx context.Context, pc *models.PaymentContext) PaymentResult {
	commit := &webpay.CommitResponse{}
	return s.settle(ctx, pc, commit, false)
}

// OrderPaymentStatus returns the payment view of one of the caller's
// orders.
func (s *PaymentService) OrderPaymentStatus(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// Transbank caps buy order identifiers at 26 characters.
func truncateBuyOrder(s string) string {
	if len(s) > 26 {
		return s[:26]
	}
	return s
}
