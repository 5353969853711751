// Package plans defines the fixed subscription tiers and the billing
// math shared by the subscription service and the renewal sweep.
package plans

import (
	"math"
	"time"
)

// Plan ids.
const (
	Monthly   = "MONTHLY"
	Quarterly = "QUARTERLY"
	Annual    = "ANNUAL"
)

// Plan is one of the three fixed tiers. Prices are CLP.
type Plan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Interval string `json:"interval"`
	Level    int    `json:"level"`
}

var catalog = map[string]Plan{
	Monthly:   {ID: Monthly, Name: "Plan Mensual", Price: 9990, Interval: "month", Level: 1},
	Quarterly: {ID: Quarterly, Name: "Plan Trimestral", Price: 25990, Interval: "quarter", Level: 2},
	Annual:    {ID: Annual, Name: "Plan Anual", Price: 89990, Interval: "year", Level: 3},
}

// All returns the tiers in ascending price order.
func All() []Plan {
	return []Plan{catalog[Monthly], catalog[Quarterly], catalog[Annual]}
}

// Get looks up a plan by id.
func Get(id string) (Plan, bool) {
	p, ok := catalog[id]
	return p, ok
}

// Price returns the plan price in CLP, 0 for unknown ids.
func Price(id string) int {
	return catalog[id].Price
}

// Level returns the tier rank used to tell upgrades from downgrades.
func Level(id string) int {
	return catalog[id].Level
}

// NextPeriod advances t by one billing period of the plan.
func NextPeriod(id string, t time.Time) time.Time {
	switch id {
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Annual:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Proration computes the amount due when moving an active subscription
// to a higher tier. The unused part of the current period is credited
// pro rata against the new plan's full price; the result never goes
// below zero.
func Proration(currentPlanID, newPlanID string, startedAt, expiresAt, now time.Time) (credit, amountDue int) {
	total := expiresAt.Sub(startedAt)
	remaining := expiresAt.Sub(now)
	var ratio float64
	if total > 0 && remaining > 0 {
		ratio = float64(remaining) / float64(total)
	}
	credit = int(math.Round(float64(Price(currentPlanID)) * ratio))
	amountDue = Price(newPlanID) - credit
	if amountDue < 0 {
		amountDue = 0
	}
	return credit, amountDue
}

// MonthlyRevenue normalizes a plan price to its monthly contribution,
// used by the subscription analytics.
func MonthlyRevenue(id string) float64 {
	switch id {
	case Quarterly:
		return float64(Price(Quarterly)) / 3
	case Annual:
		return float64(Price(Annual)) / 12
	case Monthly:
		return float64(Price(Monthly))
	default:
		return 0
	}
}
