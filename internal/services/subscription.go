package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/vmcandles/commerce-api/internal/lib/plans"
	"github.com/vmcandles/commerce-api/internal/models"
)

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	GetActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
	ListSubscriptions(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error)
	UpdateSubscriptionStatus(ctx context.Context, id, status string, autoRenew bool) error
	SetAutoRenew(ctx context.Context, id string, autoRenew bool) error
	SchedulePlanChange(ctx context.Context, id, newPlanID string) error
	MarkUpgradePending(ctx context.Context, id string) error
	ApplyUpgrade(ctx context.Context, id, newPlanID string, amount int, startedAt, expiresAt time.Time) error
}

// UpgradeQuote is the outcome of a plan change request. When
// RequiresPayment is true the frontend must run the prorated charge
// through the payment flow before the plan switches.
type UpgradeQuote struct {
	SubscriptionID  string `json:"subscriptionId"`
	CurrentPlanID   string `json:"currentPlanId"`
	NewPlanID       string `json:"newPlanId"`
	Credit          int    `json:"credit"`
	AmountDue       int    `json:"amountDue"`
	RequiresPayment bool   `json:"requiresPayment"`
}

// SubscriptionService manages membership lifecycle: creation, plan
// changes with proration, cancellation and pause.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, log: log}
}

// Plans lists the fixed plan catalog.
func (s *SubscriptionService) Plans() []plans.Plan {
	return plans.All()
}

// Create opens a pending subscription shell. It stays inactive until
// the gateway confirms the first charge.
func (s *SubscriptionService) Create(ctx context.Context, userID string, req models.CreateSubscriptionRequest) (*models.Subscription, error) {
	active, err := s.repo.HasActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrSubscriptionExists
	}

	sub := models.Subscription{
		UserID:        userID,
		PlanID:        req.PlanID,
		Status:        models.SubscriptionCancelled,
		PaymentStatus: models.PaymentPending,
		Amount:        plans.Price(req.PlanID),
		AutoRenew:     true,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.log.Info("created pending subscription",
		slog.String("subscription_id", id), slog.String("plan", req.PlanID))
	return s.repo.GetSubscription(ctx, id)
}

// Current returns the caller's active or paused subscription.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) get(ctx context.Context, id, userID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotFound
	}
	return sub, nil
}

// Get returns one of the caller's subscriptions.
func (s *SubscriptionService) Get(ctx context.Context, id, userID string) (*models.Subscription, error) {
	return s.get(ctx, id, userID)
}

// SetAutoRenew toggles renewal on an active subscription.
func (s *SubscriptionService) SetAutoRenew(ctx context.Context, id, userID string, autoRenew bool) (*models.Subscription, error) {
	sub, err := s.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, ErrNotActive
	}
	if err := s.repo.SetAutoRenew(ctx, id, autoRenew); err != nil {
		return nil, err
	}
	return s.repo.GetSubscription(ctx, id)
}

// ChangePlan quotes and, when possible, applies a plan change.
// Upgrades charge the new price minus a prorated credit for unused
// time; downgrades switch immediately but keep the paid period.
func (s *SubscriptionService) ChangePlan(ctx context.Context, id, userID string, req models.ChangePlanRequest) (*UpgradeQuote, error) {
	sub, err := s.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, ErrNotActive
	}
	if sub.PlanID == req.NewPlanID {
		return nil, ErrSamePlan
	}
	if sub.StartedAt == nil || sub.ExpiresAt == nil {
		return nil, ErrNotActive
	}

	quote := &UpgradeQuote{
		SubscriptionID: sub.ID,
		CurrentPlanID:  sub.PlanID,
		NewPlanID:      req.NewPlanID,
	}

	isUpgrade := plans.Level(req.NewPlanID) > plans.Level(sub.PlanID)
	if !isUpgrade {
		if err := s.repo.SchedulePlanChange(ctx, id, req.NewPlanID); err != nil {
			return nil, err
		}
		s.log.Info("downgraded subscription plan",
			slog.String("subscription_id", id),
			slog.String("from", sub.PlanID), slog.String("to", req.NewPlanID))
		return quote, nil
	}

	credit, amountDue := plans.Proration(sub.PlanID, req.NewPlanID,
		*sub.StartedAt, *sub.ExpiresAt, time.Now().UTC())
	quote.Credit = credit
	quote.AmountDue = amountDue
	quote.RequiresPayment = amountDue > 0

	if !quote.RequiresPayment {
		now := time.Now().UTC()
		expiry := plans.NextPeriod(req.NewPlanID, now)
		if err := s.repo.ApplyUpgrade(ctx, id, req.NewPlanID, plans.Price(req.NewPlanID), now, expiry); err != nil {
			return nil, err
		}
		s.log.Info("applied free upgrade", slog.String("subscription_id", id),
			slog.String("to", req.NewPlanID))
		return quote, nil
	}

	if err := s.repo.MarkUpgradePending(ctx, id); err != nil {
		return nil, err
	}
	s.log.Info("quoted paid upgrade", slog.String("subscription_id", id),
		slog.String("to", req.NewPlanID), slog.Int("amount_due", amountDue))
	return quote, nil
}

// Cancel stops a subscription. Access continues until the paid period
// runs out, renewals stop immediately.
func (s *SubscriptionService) Cancel(ctx context.Context, id, userID string) (*models.Subscription, error) {
	sub, err := s.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionPaused {
		return nil, ErrNotActive
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, id, models.SubscriptionCancelled, false); err != nil {
		return nil, err
	}
	s.log.Info("cancelled subscription", slog.String("subscription_id", id))
	return s.repo.GetSubscription(ctx, id)
}

// Pause suspends billing on an active subscription.
func (s *SubscriptionService) Pause(ctx context.Context, id, userID string) (*models.Subscription, error) {
	sub, err := s.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, ErrNotActive
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, id, models.SubscriptionPaused, false); err != nil {
		return nil, err
	}
	return s.repo.GetSubscription(ctx, id)
}

// Resume reactivates a paused subscription.
func (s *SubscriptionService) Resume(ctx context.Context, id, userID string) (*models.Subscription, error) {
	sub, err := s.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionPaused {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, id, models.SubscriptionActive, true); err != nil {
		return nil, err
	}
	return s.repo.GetSubscription(ctx, id)
}

// ListAll is the admin subscription listing.
func (s *SubscriptionService) ListAll(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error) {
	return s.repo.ListSubscriptions(ctx, status, page, limit)
}
