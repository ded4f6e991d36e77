package persistence

import (
	"context"
	"time"

	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/report"
	"github.com/medrent/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormSummaryRepository computes the dashboard summary with aggregate queries
type GormSummaryRepository struct {
	db       *gorm.DB
	devices  *GormMedicalDeviceRepository
	payments *GormPaymentRepository
	sales    *GormSaleRepository
	rentals  *GormRentalRepository
}

// NewGormSummaryRepository creates a new GormSummaryRepository
func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{
		db:       db,
		devices:  NewGormMedicalDeviceRepository(db),
		payments: NewGormPaymentRepository(db),
		sales:    NewGormSaleRepository(db),
		rentals:  NewGormRentalRepository(db),
	}
}

// Summary aggregates counts and amounts for the period [periodStart, now]
func (r *GormSummaryRepository) Summary(ctx context.Context, periodStart, now time.Time) (*report.AnalyticsSummary, error) {
	s := &report.AnalyticsSummary{GeneratedAt: now, PeriodStart: periodStart}
	var err error

	if s.TotalPatients, err = count(r.db.WithContext(ctx).Model(&partner.Patient{})); err != nil {
		return nil, err
	}
	if s.ActiveRentals, err = r.rentals.CountByStatus(ctx, trade.RentalStatusActive); err != nil {
		return nil, err
	}
	if s.SalesThisMonth, err = r.sales.CountSince(ctx, periodStart); err != nil {
		return nil, err
	}
	if s.RevenueThisMonth, err = r.payments.SumByStatus(ctx, finance.PaymentStatusPaid, &periodStart, &now); err != nil {
		return nil, err
	}
	if s.PendingPaymentsTotal, err = r.payments.SumByStatus(ctx, finance.PaymentStatusPending, nil, nil); err != nil {
		return nil, err
	}
	if s.PendingTransferRequests, err = count(r.db.WithContext(ctx).Model(&inventory.StockTransferRequest{}).
		Where("status = ?", inventory.TransferRequestPending)); err != nil {
		return nil, err
	}

	byStatus, err := r.devices.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	s.DevicesByStatus = make(map[string]int64, len(byStatus))
	for status, n := range byStatus {
		s.DevicesByStatus[string(status)] = n
	}
	return s, nil
}

var _ report.SummaryRepository = (*GormSummaryRepository)(nil)
