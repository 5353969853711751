package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmcandles/commerce-api/internal/lib/plans"
	"github.com/vmcandles/commerce-api/internal/lib/rabbitmq"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type RenewalRepository interface {
	ListDueRenewals(ctx context.Context, now time.Time) ([]models.Subscription, error)
	RenewSubscription(ctx context.Context, id string, expectedNextRenewal, newExpiry, paidAt time.Time) (bool, error)
	ExpireSubscription(ctx context.Context, id string) error
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]models.Subscription, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// NoticePublisher hands renewal and expiry notices to the broker.
type NoticePublisher interface {
	Publish(exchange, routingKey string, message any) error
}

// RenewalNotice is the message published for each renewal or expiry,
// consumed by the notification sender.
type RenewalNotice struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	PlanID    string    `json:"planId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RenewalService is the periodic sweep that advances billing periods
// and expires lapsed subscriptions. The period advance is guarded
// against concurrent sweeps: a subscription only renews if its
// next_renewal still matches what this sweep read.
type RenewalService struct {
	repo      RenewalRepository
	publisher NoticePublisher
	log       *slog.Logger
}

func NewRenewalService(repo RenewalRepository, publisher NoticePublisher, log *slog.Logger) *RenewalService {
	return &RenewalService{repo: repo, publisher: publisher, log: log}
}

// Run sweeps immediately and then on every tick until the context is
// cancelled.
func (s *RenewalService) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one renewal and expiry pass.
func (s *RenewalService) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	s.renewDue(ctx, now)
	s.expireLapsed(ctx, now)
}

func (s *RenewalService) renewDue(ctx context.Context, now time.Time) {
	due, err := s.repo.ListDueRenewals(ctx, now)
	if err != nil {
		s.log.Error("failed to list due renewals", sl.Err(err))
		return
	}
	if len(due) == 0 {
		s.log.Info("no renewals due")
		return
	}
	s.log.Info("found due renewals", slog.Int("count", len(due)))

	for _, sub := range due {
		if sub.NextRenewal == nil {
			continue
		}
		// Anchor the new period at the due date, not the sweep time.
		// A sweep that runs late must not shift the billing cycle.
		newExpiry := plans.NextPeriod(sub.PlanID, *sub.NextRenewal)
		renewed, err := s.repo.RenewSubscription(ctx, sub.ID, *sub.NextRenewal, newExpiry, now)
		if err != nil {
			s.log.Error("failed to renew subscription, expiring it",
				slog.String("subscription_id", sub.ID), sl.Err(err))
			if expErr := s.repo.ExpireSubscription(ctx, sub.ID); expErr != nil {
				s.log.Error("failed to expire subscription",
					slog.String("subscription_id", sub.ID), sl.Err(expErr))
				continue
			}
			s.publishNotice(ctx, rabbitmq.RoutingKeyExpired, sub, *sub.NextRenewal)
			continue
		}
		if !renewed {
			s.log.Info("subscription already renewed elsewhere",
				slog.String("subscription_id", sub.ID))
			continue
		}

		s.log.Info("renewed subscription", slog.String("subscription_id", sub.ID),
			slog.String("plan", sub.PlanID), slog.Time("expires_at", newExpiry))
		s.publishNotice(ctx, rabbitmq.RoutingKeyRenewed, sub, newExpiry)
	}
}

func (s *RenewalService) expireLapsed(ctx context.Context, now time.Time) {
	expired, err := s.repo.ExpireLapsedSubscriptions(ctx, now)
	if err != nil {
		s.log.Error("failed to expire lapsed subscriptions", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		return
	}
	s.log.Info("expired lapsed subscriptions", slog.Int("count", len(expired)))

	for _, sub := range expired {
		expiresAt := now
		if sub.ExpiresAt != nil {
			expiresAt = *sub.ExpiresAt
		}
		s.publishNotice(ctx, rabbitmq.RoutingKeyExpired, sub, expiresAt)
	}
}

func (s *RenewalService) publishNotice(ctx context.Context, routingKey string, sub models.Subscription, expiresAt time.Time) {
	user, err := s.repo.GetUserByID(ctx, sub.UserID)
	if err != nil {
		s.log.Error("failed to load subscriber",
			slog.String("user_id", sub.UserID), sl.Err(err))
		return
	}
	notice := RenewalNotice{
		Email:     user.Email,
		FirstName: user.FirstName,
		PlanID:    sub.PlanID,
		ExpiresAt: expiresAt,
	}
	if err := s.publisher.Publish(rabbitmq.NotificationsExchange, routingKey, notice); err != nil {
		s.log.Error("failed to publish notice", slog.String("routing_key", routingKey), sl.Err(err))
	}
}
