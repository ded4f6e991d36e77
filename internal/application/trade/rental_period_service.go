package trade

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// RentalPeriodService edits the periods of an existing rental
type RentalPeriodService struct {
	txScope uow.TransactionScope
	logger  *zap.Logger
	now     func() time.Time
}

// NewRentalPeriodService creates a new RentalPeriodService
func NewRentalPeriodService(txScope uow.TransactionScope, logger *zap.Logger) *RentalPeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalPeriodService{txScope: txScope, logger: logger, now: time.Now}
}

// Add appends a period to a rental; it must not overlap the others
func (s *RentalPeriodService) Add(ctx context.Context, rentalID uuid.UUID, req PeriodRequest) (*RentalPeriodResponse, error) {
	var period *trade.RentalPeriod
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		rental, err := repos.Rentals().FindByID(ctx, rentalID)
		if err != nil {
			return err
		}
		period, err = trade.NewRentalPeriod(rental.ID, req.StartDate, req.EndDate, req.Amount, strings.ToUpper(req.PaymentMethod))
		if err != nil {
			return err
		}
		applyPeriodRequest(period, req)
		if err := checkAgainstSiblings(rental, period); err != nil {
			return err
		}
		return repos.RentalPeriods().Save(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental period added", zap.String("rental_id", rentalID.String()), zap.String("period_id", period.ID.String()))
	response := ToRentalPeriodResponse(period, s.now())
	return &response, nil
}

// Update replaces the dates, amount and links of a period
func (s *RentalPeriodService) Update(ctx context.Context, id uuid.UUID, req PeriodRequest) (*RentalPeriodResponse, error) {
	var period *trade.RentalPeriod
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		period, err = repos.RentalPeriods().FindByID(ctx, id)
		if err != nil {
			return err
		}
		rental, err := repos.Rentals().FindByID(ctx, period.RentalID)
		if err != nil {
			return err
		}
		updated, err := trade.NewRentalPeriod(period.RentalID, req.StartDate, req.EndDate, req.Amount, strings.ToUpper(req.PaymentMethod))
		if err != nil {
			return err
		}
		period.StartDate = updated.StartDate
		period.EndDate = updated.EndDate
		period.Amount = updated.Amount
		period.PaymentMethod = updated.PaymentMethod
		applyPeriodRequest(period, req)
		period.Touch()
		if err := checkAgainstSiblings(rental, period); err != nil {
			return err
		}
		return repos.RentalPeriods().Save(ctx, period)
	})
	if err != nil {
		return nil, err
	}
	response := ToRentalPeriodResponse(period, s.now())
	return &response, nil
}

// Delete removes a period
func (s *RentalPeriodService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.RentalPeriods().FindByID(ctx, id); err != nil {
			return err
		}
		return repos.RentalPeriods().Delete(ctx, id)
	})
}

func applyPeriodRequest(p *trade.RentalPeriod, req PeriodRequest) {
	p.IsGapPeriod = req.IsGapPeriod
	p.GapReason = req.GapReason
	p.Notes = req.Notes
	p.PaymentID = req.PaymentID
	p.CNAMBondID = req.CNAMBondID
}

// checkAgainstSiblings validates the rental's periods with p in place of
// its stored version
func checkAgainstSiblings(rental *trade.Rental, p *trade.RentalPeriod) error {
	spans := make([]trade.PeriodSpan, 0, len(rental.Periods)+1)
	for i := range rental.Periods {
		if rental.Periods[i].ID != p.ID {
			spans = append(spans, rental.Periods[i].AsSpan())
		}
	}
	spans = append(spans, p.AsSpan())
	start := rental.StartDate
	if issues := trade.ValidatePeriods(spans, &start, rental.EndDate); trade.HasBlockingIssues(issues) {
		return periodsError(issues)
	}
	return nil
}
