package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsSummary is the read model behind the dashboard
type AnalyticsSummary struct {
	GeneratedAt             time.Time        `json:"generated_at"`
	PeriodStart             time.Time        `json:"period_start"`
	TotalPatients           int64            `json:"total_patients"`
	ActiveRentals           int64            `json:"active_rentals"`
	SalesThisMonth          int64            `json:"sales_this_month"`
	RevenueThisMonth        decimal.Decimal  `json:"revenue_this_month"`
	PendingPaymentsTotal    decimal.Decimal  `json:"pending_payments_total"`
	PendingTransferRequests int64            `json:"pending_transfer_requests"`
	DevicesByStatus         map[string]int64 `json:"devices_by_status"`
}

// MonthStart returns the first instant of t's month in t's location
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SummaryRepository computes the summary with aggregate queries
type SummaryRepository interface {
	Summary(ctx context.Context, periodStart, now time.Time) (*AnalyticsSummary, error)
}

// SummaryCache keeps a computed summary for a short time
type SummaryCache interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, key string) (*AnalyticsSummary, error)
	Set(ctx context.Context, key string, summary *AnalyticsSummary, ttl time.Duration) error
}
