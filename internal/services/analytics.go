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

type AnalyticsRepository interface {
	RevenueSummary(ctx context.Context, now time.Time) (*models.RevenueSummary, error)
	OrdersByStatus(ctx context.Context) (map[string]int64, error)
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
	RevenueByCategory(ctx context.Context) ([]models.CategoryRevenue, error)
	SalesOverTime(ctx context.Context, days int, now time.Time) ([]models.DailySales, error)
	CountUsersWithOrders(ctx context.Context) (int64, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)

	SubscriptionStatusCounts(ctx context.Context) (map[string]int64, map[string]int64, error)
	ListSubscriptions(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error)

	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]models.InventoryItem, error)
	UpdateInventory(ctx context.Context, productID string, req models.UpdateInventoryRequest) error
	InventoryStats(ctx context.Context) (*models.InventoryStats, error)
	ListCustomers(ctx context.Context, page, limit int) ([]models.CustomerSummary, int64, error)
}

// AnalyticsService assembles the admin dashboards and the inventory
// report.
type AnalyticsService struct {
	repo AnalyticsRepository
	log  *slog.Logger
}

func NewAnalyticsService(repo AnalyticsRepository, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, log: log}
}

// Dashboard builds the sales overview. days controls the width of the
// sales-over-time chart.
func (s *AnalyticsService) Dashboard(ctx context.Context, days int) (*models.Dashboard, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()

	revenue, err := s.repo.RevenueSummary(ctx, now)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.OrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CountUsersWithOrders(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, 10)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.RevenueByCategory(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.repo.SalesOverTime(ctx, days, now)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.ListOrders(ctx, models.OrderFilter{Page: 1, Limit: 10})
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Revenue:           *revenue,
		OrdersByStatus:    byStatus,
		TotalCustomers:    customers,
		TopProducts:       top,
		RevenueByCategory: byCategory,
		SalesOverTime:     series,
		RecentOrders:      recent,
	}, nil
}

// Subscriptions builds the membership dashboard. MRR normalizes every
// active plan to its monthly revenue; ARR is twelve times that.
func (s *AnalyticsService) Subscriptions(ctx context.Context) (*models.SubscriptionAnalytics, error) {
	byStatus, byPlan, err := s.repo.SubscriptionStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	var mrr float64
	for planID, count := range byPlan {
		mrr += plans.MonthlyRevenue(planID) * float64(count)
	}

	recent, _, err := s.repo.ListSubscriptions(ctx, "", 1, 10)
	if err != nil {
		return nil, err
	}

	return &models.SubscriptionAnalytics{
		ByStatus: byStatus,
		ByPlan:   byPlan,
		MRR:      mrr,
		ARR:      mrr * 12,
		Recent:   recent,
	}, nil
}

// Inventory returns the full stock report.
func (s *AnalyticsService) Inventory(ctx context.Context) ([]models.InventoryItem, *models.InventoryStats, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.repo.InventoryStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	return items, stats, nil
}

// LowStock lists tracked products at or below their alert threshold.
func (s *AnalyticsService) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListLowStock(ctx)
}

// UpdateStock adjusts one product's inventory fields.
func (s *AnalyticsService) UpdateStock(ctx context.Context, productID string, req models.UpdateInventoryRequest) error {
	if err := s.repo.UpdateInventory(ctx, productID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info("updated inventory", slog.String("product_id", productID))
	return nil
}

// Customers is the admin customer list with order aggregates.
func (s *AnalyticsService) Customers(ctx context.Context, page, limit int) ([]models.CustomerSummary, int64, error) {
	return s.repo.ListCustomers(ctx, page, limit)
}
