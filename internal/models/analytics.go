package models

import "time"

// RevenueSummary is the money section of the admin dashboard. Growth
// compares this month against last month, in percent.
type RevenueSummary struct {
	Total         float64 `json:"total"`
	ThisMonth     float64 `json:"thisMonth"`
	LastMonth     float64 `json:"lastMonth"`
	ThisWeek      float64 `json:"thisWeek"`
	Growth        float64 `json:"growth"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// TopProduct is one row of the best-sellers table.
type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// CategoryRevenue is revenue grouped by product category.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// DailySales is one day's bucket of the sales-over-time chart.
type DailySales struct {
	Date    time.Time `json:"date"`
	Orders  int64     `json:"orders"`
	Revenue float64   `json:"revenue"`
}

// Dashboard is the full admin analytics payload.
type Dashboard struct {
	Revenue           RevenueSummary    `json:"revenue"`
	OrdersByStatus    map[string]int64  `json:"ordersByStatus"`
	TotalCustomers    int64             `json:"totalCustomers"`
	TopProducts       []TopProduct      `json:"topProducts"`
	RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`
	SalesOverTime     []DailySales      `json:"salesOverTime"`
	RecentOrders      []Order           `json:"recentOrders"`
}

// SubscriptionAnalytics is the admin subscription dashboard.
type SubscriptionAnalytics struct {
	ByStatus map[string]int64 `json:"byStatus"`
	ByPlan   map[string]int64 `json:"byPlan"`
	MRR      float64          `json:"mrr"`
	ARR      float64          `json:"arr"`
	Recent   []Subscription   `json:"recent"`
}

// Stock status labels derived from stock counts.
const (
	StockStatusOut = "out-of-stock"
	StockStatusLow = "low-stock"
	StockStatusIn  = "in-stock"
)

// InventoryItem is one product row of the inventory report.
type InventoryItem struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	LowStockAlert int     `json:"lowStockAlert"`
	InStock       bool    `json:"inStock"`
	StockStatus   string  `json:"stockStatus"`
}

// InventoryStats summarizes the whole inventory.
type InventoryStats struct {
	TotalProducts   int64            `json:"totalProducts"`
	OutOfStock      int64            `json:"outOfStock"`
	LowStock        int64            `json:"lowStock"`
	TotalStockValue float64          `json:"totalStockValue"`
	ByCategory      map[string]int64 `json:"byCategory"`
}

// UpdateInventoryRequest is the admin stock adjustment payload.
type UpdateInventoryRequest struct {
	Stock          *int  `json:"stock" validate:"omitempty,gte=0"`
	LowStockAlert  *int  `json:"lowStockAlert" validate:"omitempty,gte=0"`
	TrackInventory *bool `json:"trackInventory"`
}

// CustomerSummary is one row of the admin customer list.
type CustomerSummary struct {
	User        User       `json:"user"`
	OrderCount  int64      `json:"orderCount"`
	TotalSpent  float64    `json:"totalSpent"`
	LastOrderAt *time.Time `json:"lastOrderAt,omitempty"`
}
